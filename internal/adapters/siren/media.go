package siren

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ewilliams-labs/siren/internal/core/ports"
)

// browserUserAgent is sent to the CDN, which refuses some non-browser agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Fetch opens a media asset. A Range header is forwarded as-is and a 206
// response passes through; any other non-2xx status is an error.
func (c *Client) Fetch(ctx context.Context, mr ports.MediaRequest) (*ports.Media, error) {
	if mr.URL == "" {
		return nil, fmt.Errorf("siren adapter: media url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mr.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("siren adapter: build media request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	if mr.Range != "" {
		req.Header.Set("Range", mr.Range)
	}

	// #nosec G107 -- host allow-listing happens in the REST layer
	resp, err := c.mediaClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siren adapter: media request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &MediaStatusError{StatusCode: resp.StatusCode}
	}

	length := resp.Header.Get("Content-Length")
	if length == "" && resp.ContentLength >= 0 {
		length = strconv.FormatInt(resp.ContentLength, 10)
	}

	return &ports.Media{
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: length,
		ContentRange:  resp.Header.Get("Content-Range"),
		Body:          resp.Body,
	}, nil
}

// MediaStatusError is a non-2xx answer from the media host.
type MediaStatusError struct {
	StatusCode int
}

func (e *MediaStatusError) Error() string {
	return fmt.Sprintf("siren adapter: media status %d", e.StatusCode)
}
