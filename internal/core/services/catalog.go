package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/siren/internal/core/domain"
	"github.com/ewilliams-labs/siren/internal/core/ports"
	"github.com/ewilliams-labs/siren/internal/lyrics"
)

// maxLyricBytes bounds a lyric download; real files are a few KB.
const maxLyricBytes = 1 << 20

// Catalog coordinates the upstream catalog, media host, snapshot store and lyric cache.
type Catalog struct {
	provider ports.CatalogProvider
	media    ports.MediaFetcher
	repo     ports.CatalogRepository
	cache    ports.LyricCache
}

// NewCatalog constructs a Catalog. cache may be nil.
func NewCatalog(provider ports.CatalogProvider, media ports.MediaFetcher, repo ports.CatalogRepository, cache ports.LyricCache) *Catalog {
	return &Catalog{
		provider: provider,
		media:    media,
		repo:     repo,
		cache:    cache,
	}
}

// Albums lists every album upstream.
func (c *Catalog) Albums(ctx context.Context) ([]domain.Album, error) {
	albums, err := c.provider.ListAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list albums: %w", err)
	}
	return albums, nil
}

// Songs lists every song upstream.
func (c *Catalog) Songs(ctx context.Context) ([]domain.SongSummary, error) {
	songs, err := c.provider.ListSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list songs: %w", err)
	}
	return songs, nil
}

// Song returns one song.
func (c *Catalog) Song(ctx context.Context, cid string) (domain.Song, error) {
	if strings.TrimSpace(cid) == "" {
		return domain.Song{}, fmt.Errorf("service: song id cannot be empty: %w", domain.ErrInvalidArgument)
	}
	song, err := c.provider.GetSong(ctx, cid)
	if err != nil {
		return domain.Song{}, fmt.Errorf("service: failed to load song: %w", err)
	}
	return song, nil
}

// AlbumDetail returns one album with its songs.
func (c *Catalog) AlbumDetail(ctx context.Context, cid string) (domain.AlbumDetail, error) {
	if strings.TrimSpace(cid) == "" {
		return domain.AlbumDetail{}, fmt.Errorf("service: album id cannot be empty: %w", domain.ErrInvalidArgument)
	}
	detail, err := c.provider.GetAlbumDetail(ctx, cid)
	if err != nil {
		return domain.AlbumDetail{}, fmt.Errorf("service: failed to load album: %w", err)
	}
	return detail, nil
}

// Refresh pulls albums and songs in parallel and replaces the snapshot.
func (c *Catalog) Refresh(ctx context.Context) (domain.Catalog, error) {
	var snapshot domain.Catalog

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		albums, err := c.provider.ListAlbums(gctx)
		snapshot.Albums = albums
		return err
	})
	g.Go(func() error {
		songs, err := c.provider.ListSongs(gctx)
		snapshot.Songs = songs
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Catalog{}, fmt.Errorf("service: failed to fetch catalog: %w", err)
	}

	if err := c.repo.SaveCatalog(ctx, snapshot); err != nil {
		return domain.Catalog{}, fmt.Errorf("service: failed to persist catalog: %w", err)
	}
	slog.Info("catalog snapshot refreshed", "albums", len(snapshot.Albums), "songs", len(snapshot.Songs))
	return snapshot, nil
}

// Search filters the stored snapshot, refreshing it first when it is empty.
func (c *Catalog) Search(ctx context.Context, query string) ([]domain.Album, error) {
	snapshot, err := c.repo.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load catalog: %w", err)
	}
	if snapshot.IsEmpty() {
		if snapshot, err = c.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return snapshot.FilterAlbums(query), nil
}

// Lyrics returns the raw lyric text at lyricURL, normalized to UTF-8.
func (c *Catalog) Lyrics(ctx context.Context, lyricURL string) (string, error) {
	if strings.TrimSpace(lyricURL) == "" {
		return "", fmt.Errorf("service: lyric url cannot be empty: %w", domain.ErrInvalidArgument)
	}

	if c.cache != nil {
		text, found, err := c.cache.Get(lyricURL)
		if err != nil {
			slog.Warn("lyric cache read failed", "url", lyricURL, "error", err)
		} else if found {
			return text, nil
		}
	}

	media, err := c.media.Fetch(ctx, ports.MediaRequest{URL: lyricURL})
	if err != nil {
		return "", fmt.Errorf("service: failed to fetch lyrics: %w", err)
	}
	defer media.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(media.Body, maxLyricBytes))
	if err != nil {
		return "", fmt.Errorf("service: failed to read lyrics: %w", err)
	}
	text, err := lyrics.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("service: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Put(lyricURL, text); err != nil {
			slog.Warn("lyric cache write failed", "url", lyricURL, "error", err)
		}
	}
	return text, nil
}

// ParsedLyrics resolves a song's lyric file and parses it. A song without a
// lyric file, or whose lyric file cannot be fetched, yields an empty track.
// Only a failed song lookup is an error.
func (c *Catalog) ParsedLyrics(ctx context.Context, cid string) (lyrics.Track, error) {
	song, err := c.Song(ctx, cid)
	if err != nil {
		return nil, err
	}
	if song.LyricURL == "" {
		return lyrics.Track{}, nil
	}
	text, err := c.Lyrics(ctx, song.LyricURL)
	if err != nil {
		slog.Warn("lyrics unavailable, serving empty track", "song", cid, "url", song.LyricURL, "error", err)
		return lyrics.Track{}, nil
	}
	return lyrics.Parse(text), nil
}
