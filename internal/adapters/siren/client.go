// Package siren is the upstream catalog adapter. It reads album and song
// metadata from the catalog API and streams media assets from their CDN URLs.
package siren

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/siren/internal/core/domain"
	"github.com/ewilliams-labs/siren/internal/core/ports"
)

// DefaultBaseURL is the public catalog API.
const DefaultBaseURL = "https://monster-siren.hypergryph.com/api"

// Settings tunes retries and client-side rate limiting.
type Settings struct {
	MaxRetries     int
	RetryBackoff   time.Duration
	RequestsPerSec float64
	Burst          int
}

// Client talks to the upstream catalog API.
type Client struct {
	httpClient  *http.Client
	mediaClient *http.Client
	baseURL     string
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
}

// compile-time interface assertions
var (
	_ ports.CatalogProvider = (*Client)(nil)
	_ ports.MediaFetcher    = (*Client)(nil)
)

// NewClient constructs a catalog client. httpClient is used for API calls and
// may carry credentials; mediaClient is used for CDN assets.
func NewClient(httpClient, mediaClient *http.Client, baseURL string, s Settings) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if mediaClient == nil {
		mediaClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if s.RequestsPerSec > 0 {
		burst := s.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.RequestsPerSec), burst)
	}

	return &Client{
		httpClient:  httpClient,
		mediaClient: mediaClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		limiter:     limiter,
		maxRetries:  s.MaxRetries,
		baseBackoff: s.RetryBackoff,
	}
}

// ListAlbums returns every album of the catalog.
func (c *Client) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	var albums []wireAlbum
	if err := c.getJSON(ctx, "/albums", &albums); err != nil {
		return nil, err
	}
	return mapAlbums(albums), nil
}

// ListSongs returns every song of the catalog.
func (c *Client) ListSongs(ctx context.Context) ([]domain.SongSummary, error) {
	var list wireSongList
	if err := c.getJSON(ctx, "/songs", &list); err != nil {
		return nil, err
	}
	return mapSongSummaries(list.List), nil
}

// GetSong returns the playable record of one song.
func (c *Client) GetSong(ctx context.Context, cid string) (domain.Song, error) {
	if cid == "" {
		return domain.Song{}, fmt.Errorf("siren adapter: song cid: %w", domain.ErrInvalidArgument)
	}
	var song *wireSong
	if err := c.getJSON(ctx, "/song/"+url.PathEscape(cid), &song); err != nil {
		return domain.Song{}, err
	}
	if song == nil {
		return domain.Song{}, fmt.Errorf("siren adapter: song %s: %w", cid, domain.ErrNotFound)
	}
	return song.toDomain(), nil
}

// GetAlbumDetail returns an album with its songs.
func (c *Client) GetAlbumDetail(ctx context.Context, cid string) (domain.AlbumDetail, error) {
	if cid == "" {
		return domain.AlbumDetail{}, fmt.Errorf("siren adapter: album cid: %w", domain.ErrInvalidArgument)
	}
	var detail *wireAlbumDetail
	if err := c.getJSON(ctx, "/album/"+url.PathEscape(cid)+"/detail", &detail); err != nil {
		return domain.AlbumDetail{}, err
	}
	if detail == nil {
		return domain.AlbumDetail{}, fmt.Errorf("siren adapter: album %s: %w", cid, domain.ErrNotFound)
	}
	return detail.toDomain(), nil
}

// getJSON fetches path, unwraps the {code,msg,data} envelope and decodes data into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("siren adapter: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("siren adapter: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return fmt.Errorf("siren adapter: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("siren adapter: %s: %w", path, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("siren adapter: %s: status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("siren adapter: %s: decode envelope: %w", path, err)
	}
	if env.Code != 0 {
		return &UpstreamError{Path: path, Code: env.Code, Msg: env.Msg}
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("siren adapter: %s: decode data: %w", path, err)
	}
	return nil
}

// UpstreamError is a non-zero code inside a 200 envelope.
type UpstreamError struct {
	Path string
	Code int
	Msg  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("siren adapter: %s: upstream code %d: %s", e.Path, e.Code, e.Msg)
}

// IsUpstreamError reports whether err carries an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
