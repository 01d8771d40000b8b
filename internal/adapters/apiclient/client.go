// Package apiclient reads from the siren API server. It is the player's view
// of the backend: song and album metadata, lyric text, and proxy URLs for
// audio and images.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ewilliams-labs/siren/internal/core/domain"
	"github.com/ewilliams-labs/siren/internal/core/ports"
)

// DefaultBaseURL is where a locally started API server listens.
const DefaultBaseURL = "http://localhost:5000/api"

// Client talks to the siren API. Requests are not retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ ports.SongSource = (*Client)(nil)

// NewClient constructs a Client for baseURL, e.g. http://localhost:5000/api.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// APIError is a non-2xx answer from the API server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ListAlbums returns the album grid.
func (c *Client) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	var env envelope[[]domain.Album]
	if err := c.getJSON(ctx, "/albums", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Search returns albums matching query by album, artist or song.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Album, error) {
	var env envelope[[]domain.Album]
	if err := c.getJSON(ctx, "/search?q="+url.QueryEscape(query), &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetSong returns the playback record for cid.
func (c *Client) GetSong(ctx context.Context, cid string) (domain.Song, error) {
	var env envelope[domain.Song]
	if err := c.getJSON(ctx, "/song/"+url.PathEscape(cid), &env); err != nil {
		return domain.Song{}, err
	}
	return env.Data, nil
}

// GetAlbumDetail returns an album and its track list.
func (c *Client) GetAlbumDetail(ctx context.Context, cid string) (domain.AlbumDetail, error) {
	var env envelope[domain.AlbumDetail]
	if err := c.getJSON(ctx, "/album/"+url.PathEscape(cid)+"/detail", &env); err != nil {
		return domain.AlbumDetail{}, err
	}
	return env.Data, nil
}

// GetLyrics returns the raw lyric text behind lyricURL through the lyric proxy.
func (c *Client) GetLyrics(ctx context.Context, lyricURL string) (string, error) {
	resp, err := c.get(ctx, "/lyrics/"+url.PathEscape(lyricURL))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("apiclient: failed to read lyrics: %w", err)
	}
	return string(body), nil
}

// WaitReady polls the health endpoint until the server answers 200 or
// timeout passes.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		resp, err := c.get(ctx, "/health")
		if err == nil {
			resp.Body.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("apiclient: server not available after %v: %w", timeout, err)
		case <-ticker.C:
		}
	}
}

// AudioURL is the proxied address of an audio source.
func (c *Client) AudioURL(sourceURL string) string {
	return c.proxyURL("/audio", sourceURL)
}

// ImageURL is the proxied address of a cover image.
func (c *Client) ImageURL(coverURL string) string {
	return c.proxyURL("/image", coverURL)
}

func (c *Client) proxyURL(path, target string) string {
	if target == "" {
		return ""
	}
	return c.baseURL + path + "?url=" + url.QueryEscape(target)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("apiclient: failed to decode %s: %w", path, err)
	}
	return nil
}

// get issues a GET and converts non-2xx answers into errors. The caller closes
// the body of a successful response.
func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: request failed: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("apiclient: %w: %w", apiErr, domain.ErrNotFound)
	}
	return nil, apiErr
}
