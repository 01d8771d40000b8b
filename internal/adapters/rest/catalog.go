package rest

import (
	"log/slog"
	"net/http"

	"github.com/ewilliams-labs/siren/internal/worker"
)

type songListData struct {
	List any `json:"list"`
}

// ListSongs handles GET /api/songs
func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.svc.Songs(r.Context())
	if err != nil {
		slog.Error("failed to list songs", "error", err)
		writeServiceError(w, err)
		return
	}
	writeData(w, songListData{List: songs})
}

// GetSong handles GET /api/song/{cid}
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.svc.Song(r.Context(), r.PathValue("cid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// The player asks for the lyric file right after this, so start fetching it.
	if h.pool != nil && song.LyricURL != "" {
		h.pool.Submit(worker.Job{Kind: worker.WarmLyrics, URL: song.LyricURL})
	}
	writeData(w, song)
}

// GetSongLyrics handles GET /api/song/{cid}/lyrics
func (h *Handler) GetSongLyrics(w http.ResponseWriter, r *http.Request) {
	track, err := h.svc.ParsedLyrics(r.Context(), r.PathValue("cid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, track)
}

// ListAlbums handles GET /api/albums
func (h *Handler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.svc.Albums(r.Context())
	if err != nil {
		slog.Error("failed to list albums", "error", err)
		writeServiceError(w, err)
		return
	}
	writeData(w, albums)
}

// GetAlbumDetail handles GET /api/album/{cid}/detail
func (h *Handler) GetAlbumDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.AlbumDetail(r.Context(), r.PathValue("cid"))
	if err != nil {
		slog.Error("failed to load album detail", "cid", r.PathValue("cid"), "error", err)
		writeServiceError(w, err)
		return
	}
	writeData(w, detail)
}

// Search handles GET /api/search?q=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	albums, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, albums)
}

// RefreshCatalog handles POST /api/catalog/refresh
func (h *Handler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		writeError(w, http.StatusNotImplemented, "background worker not configured")
		return
	}
	if !h.pool.Submit(worker.Job{Kind: worker.RefreshCatalog}) {
		writeError(w, http.StatusServiceUnavailable, "refresh queue is full")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
