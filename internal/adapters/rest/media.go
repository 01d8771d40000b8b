package rest

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/ewilliams-labs/siren/internal/core/ports"
)

const (
	fontCacheControl = "public, max-age=31536000"
	lyricsPrefix     = "/api/lyrics/"
)

// withRawLyricURL re-escapes an unescaped target in the lyric route. Without it
// the mux cleans "https://" to "https:/" and redirects before ProxyLyrics runs.
func withRawLyricURL(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if target, ok := strings.CutPrefix(r.URL.Path, lyricsPrefix); ok && strings.Contains(target, "//") {
			r.URL.RawPath = lyricsPrefix + url.PathEscape(target)
		}
		next.ServeHTTP(w, r)
	})
}

// ProxyLyrics handles GET /api/lyrics/{url...}. The target may also be given
// as ?url= when a client cannot escape it into the path.
func (h *Handler) ProxyLyrics(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("url")
	if target == "" {
		target = r.URL.Query().Get("url")
	}
	if err := h.checkMediaURL(target); err != nil {
		writeMediaURLError(w, err)
		return
	}

	text, err := h.svc.Lyrics(r.Context(), target)
	if err != nil {
		slog.Error("failed to fetch lyrics", "url", target, "error", err)
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

// ProxyImage handles GET /api/image?url=
func (h *Handler) ProxyImage(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, proxyOptions{defaultType: "image/png"})
}

// ProxyFont handles GET /api/font?url=
func (h *Handler) ProxyFont(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, proxyOptions{
		typeFor:      fontContentType,
		cacheControl: fontCacheControl,
	})
}

// ProxyAudio handles GET /api/audio?url=. Range requests pass through so
// clients can seek.
func (h *Handler) ProxyAudio(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, proxyOptions{
		defaultType:  "audio/wav",
		forwardRange: true,
		rejectHTML:   true,
	})
}

type proxyOptions struct {
	defaultType  string
	typeFor      func(target string) string
	cacheControl string
	forwardRange bool
	rejectHTML   bool
}

func (h *Handler) proxy(w http.ResponseWriter, r *http.Request, opts proxyOptions) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "Missing url parameter")
		return
	}
	if err := h.checkMediaURL(target); err != nil {
		writeMediaURLError(w, err)
		return
	}

	req := ports.MediaRequest{URL: target}
	if opts.forwardRange {
		req.Range = r.Header.Get("Range")
	}

	media, err := h.media.Fetch(r.Context(), req)
	if err != nil {
		slog.Error("media proxy failed", "url", target, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer media.Body.Close()

	if opts.rejectHTML && strings.Contains(media.ContentType, "text/html") {
		slog.Error("received HTML instead of media", "url", target)
		writeError(w, http.StatusBadRequest, "CDN returned HTML instead of audio")
		return
	}

	contentType := media.ContentType
	if opts.typeFor != nil {
		contentType = opts.typeFor(target)
	}
	if contentType == "" {
		contentType = opts.defaultType
	}

	hdr := w.Header()
	hdr.Set("Content-Type", contentType)
	if media.ContentLength != "" {
		hdr.Set("Content-Length", media.ContentLength)
	}
	if opts.forwardRange {
		hdr.Set("Accept-Ranges", "bytes")
		if media.ContentRange != "" {
			hdr.Set("Content-Range", media.ContentRange)
		}
	}
	if opts.cacheControl != "" {
		hdr.Set("Cache-Control", opts.cacheControl)
	}

	status := http.StatusOK
	if media.StatusCode == http.StatusPartialContent {
		status = http.StatusPartialContent
	}
	w.WriteHeader(status)
	if _, err := io.Copy(w, media.Body); err != nil {
		// headers are gone; the client sees a truncated body
		slog.Warn("media copy interrupted", "url", target, "error", err)
	}
}

type mediaURLError struct {
	status int
	msg    string
}

func (e *mediaURLError) Error() string { return e.msg }

// checkMediaURL rejects non-http targets and hosts outside the allow list.
func (h *Handler) checkMediaURL(target string) error {
	if target == "" {
		return &mediaURLError{status: http.StatusBadRequest, msg: "Missing url parameter"}
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &mediaURLError{status: http.StatusBadRequest, msg: fmt.Sprintf("invalid media url %q", target)}
	}
	if len(h.allowedHosts) == 0 {
		return nil
	}
	if _, ok := h.allowedHosts[strings.ToLower(u.Hostname())]; !ok {
		return &mediaURLError{status: http.StatusForbidden, msg: fmt.Sprintf("host %q is not allowed", u.Hostname())}
	}
	return nil
}

func writeMediaURLError(w http.ResponseWriter, err error) {
	if me, ok := err.(*mediaURLError); ok {
		writeError(w, me.status, me.msg)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func fontContentType(target string) string {
	p := target
	if u, err := url.Parse(target); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".ttf":
		return "font/ttf"
	case ".eot":
		return "application/vnd.ms-fontobject"
	default:
		return "application/octet-stream"
	}
}
