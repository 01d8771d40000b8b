package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/siren/internal/core/domain"
	"github.com/ewilliams-labs/siren/internal/core/ports"
	"github.com/ewilliams-labs/siren/internal/core/services"
	"github.com/ewilliams-labs/siren/internal/worker"
)

const requestIDHeader = "X-Request-ID"

// Options tunes the HTTP adapter.
type Options struct {
	// AllowedMediaHosts limits which hosts the media proxies may reach.
	// Empty means any host.
	AllowedMediaHosts []string
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc          *services.Catalog
	media        ports.MediaFetcher
	pool         *worker.Pool
	allowedHosts map[string]struct{}
	router       *http.ServeMux
	handler      http.Handler
}

// NewHandler initializes the HTTP adapter and sets up routes. pool may be nil,
// which disables background refresh and lyric warming.
func NewHandler(svc *services.Catalog, media ports.MediaFetcher, pool *worker.Pool, opts Options) *Handler {
	h := &Handler{
		svc:          svc,
		media:        media,
		pool:         pool,
		allowedHosts: make(map[string]struct{}, len(opts.AllowedMediaHosts)),
		router:       http.NewServeMux(),
	}
	for _, host := range opts.AllowedMediaHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			h.allowedHosts[host] = struct{}{}
		}
	}

	h.routes()
	h.handler = withRequestID(withCORS(withRawLyricURL(h.router)))

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.HandleFunc("GET /api/health", h.HealthCheck)

	// Catalog
	h.router.HandleFunc("GET /api/songs", h.ListSongs)
	h.router.HandleFunc("GET /api/song/{cid}", h.GetSong)
	h.router.HandleFunc("GET /api/song/{cid}/lyrics", h.GetSongLyrics)
	h.router.HandleFunc("GET /api/albums", h.ListAlbums)
	h.router.HandleFunc("GET /api/album/{cid}/detail", h.GetAlbumDetail)
	h.router.HandleFunc("GET /api/search", h.Search)
	h.router.HandleFunc("POST /api/catalog/refresh", h.RefreshCatalog)

	// Proxies
	h.router.HandleFunc("GET /api/lyrics/{url...}", h.ProxyLyrics)
	h.router.HandleFunc("GET /api/image", h.ProxyImage)
	h.router.HandleFunc("GET /api/audio", h.ProxyAudio)
	h.router.HandleFunc("GET /api/font", h.ProxyFont)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Siren is live"})
}

// envelope mirrors the upstream catalog response shape the front end expects.
type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError maps domain sentinels to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, domain.ErrInvalidArgument):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), "INVALID_ARGUMENT")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type, Range")
		hdr.Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges, "+requestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming proxies responsive through the recorder.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
			"request_id", id)
	})
}
