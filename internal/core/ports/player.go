package ports

import (
	"context"

	"github.com/ewilliams-labs/siren/internal/core/domain"
)

// SongSource is what a player needs from the backend to load a song.
type SongSource interface {
	GetSong(ctx context.Context, cid string) (domain.Song, error)
	GetAlbumDetail(ctx context.Context, cid string) (domain.AlbumDetail, error)
	GetLyrics(ctx context.Context, lyricURL string) (string, error)
	AudioURL(sourceURL string) string
	ImageURL(coverURL string) string
}
