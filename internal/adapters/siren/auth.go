package siren

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Credentials enable OAuth2 client-credentials auth for catalog gateways
// that require it. The public API needs none.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

func (c Credentials) enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.TokenURL != ""
}

// NewHTTPClient returns the client for catalog API calls. When creds are
// complete the client fetches and refreshes bearer tokens on its own.
func NewHTTPClient(ctx context.Context, timeout time.Duration, creds Credentials) *http.Client {
	base := &http.Client{Timeout: timeout}
	if !creds.enabled() {
		return base
	}

	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL,
		Scopes:       creds.Scopes,
	}
	client := cfg.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	client.Timeout = timeout
	return client
}
