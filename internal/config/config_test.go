package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var envKeys = []string{
	"SIREN_CONFIG", "PORT", "LOG_LEVEL", "SIREN_UPSTREAM_URL", "HTTP_TIMEOUT", "MEDIA_TIMEOUT",
	"UPSTREAM_MAX_RETRIES", "UPSTREAM_RETRY_BACKOFF", "UPSTREAM_RPS", "UPSTREAM_BURST",
	"UPSTREAM_CLIENT_ID", "UPSTREAM_CLIENT_SECRET", "UPSTREAM_TOKEN_URL", "UPSTREAM_SCOPES",
	"DB_PATH", "LYRIC_CACHE_PATH", "ALLOWED_MEDIA_HOSTS", "WORKERS", "QUEUE_SIZE", "JOB_TIMEOUT",
	"REFRESH_ON_START",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("defaults: got %+v, want %+v", cfg, Default())
	}
	if cfg.OAuthEnabled() {
		t.Fatalf("oauth should be off by default")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "siren.toml")
	body := `
port = "6000"
log_level = "debug"

[upstream]
base_url = "https://mirror.test/api"
http_timeout = "5s"
max_retries = 0
requests_per_sec = 2.5

[oauth]
client_id = "id"
client_secret = "secret"
token_url = "https://auth.test/token"
scopes = ["catalog.read"]

[proxy]
allowed_hosts = ["cdn.test", "res01.test"]

[worker]
workers = 4
job_timeout = "bogus"
refresh_on_start = false
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SIREN_CONFIG", path)
	t.Setenv("PORT", "7000")
	t.Setenv("ALLOWED_MEDIA_HOSTS", " cdn.test , ,other.test")
	t.Setenv("QUEUE_SIZE", "nope")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env beats file", cfg.Port, "7000"},
		{"log level from file", cfg.LogLevel, slog.LevelDebug},
		{"base url", cfg.UpstreamBaseURL, "https://mirror.test/api"},
		{"timeout", cfg.HTTPTimeout, 5 * time.Second},
		{"explicit zero retries", cfg.MaxRetries, 0},
		{"rate", cfg.RequestsPerSec, 2.5},
		{"burst keeps default", cfg.Burst, defaultBurst},
		{"oauth", cfg.OAuthEnabled(), true},
		{"scopes", cfg.OAuthScopes, []string{"catalog.read"}},
		{"hosts from env", cfg.AllowedMediaHosts, []string{"cdn.test", "other.test"}},
		{"workers", cfg.Workers, 4},
		{"bad duration falls back", cfg.JobTimeout, defaultJobTimeout},
		{"bad int falls back", cfg.QueueSize, defaultQueueSize},
		{"refresh disabled", cfg.RefreshOnStart, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIREN_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", time.Minute},
		{"90s", 90 * time.Second},
		{"0", 0},
		{"soon", time.Minute},
	}
	for _, tt := range tests {
		if got := parseDurationOrDefault(tt.in, time.Minute); got != tt.want {
			t.Errorf("parseDurationOrDefault(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}
