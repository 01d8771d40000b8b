package ports

import (
	"context"
	"io"

	"github.com/ewilliams-labs/siren/internal/core/domain"
)

// CatalogProvider reads album and song metadata from the upstream catalog.
type CatalogProvider interface {
	ListAlbums(ctx context.Context) ([]domain.Album, error)
	ListSongs(ctx context.Context) ([]domain.SongSummary, error)
	GetSong(ctx context.Context, cid string) (domain.Song, error)
	GetAlbumDetail(ctx context.Context, cid string) (domain.AlbumDetail, error)
}

// MediaRequest names a remote asset and an optional HTTP Range.
type MediaRequest struct {
	URL   string
	Range string
}

// Media is an open upstream asset. Callers must close Body.
type Media struct {
	StatusCode    int
	ContentType   string
	ContentLength string
	ContentRange  string
	Body          io.ReadCloser
}

// MediaFetcher streams audio, images, fonts and lyric files by URL.
type MediaFetcher interface {
	Fetch(ctx context.Context, req MediaRequest) (*Media, error)
}
