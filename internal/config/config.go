// Package config loads server settings. Values come from built-in defaults,
// then an optional TOML file named by SIREN_CONFIG, then the environment
// (a .env file in the working directory is read first).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel slog.Level

	UpstreamBaseURL string
	HTTPTimeout     time.Duration
	// MediaTimeout bounds CDN requests; zero leaves streams unbounded.
	MediaTimeout   time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	RequestsPerSec float64
	Burst          int

	OAuthClientID     string
	OAuthClientSecret string
	OAuthTokenURL     string
	OAuthScopes       []string

	DBPath            string
	LyricCachePath    string
	AllowedMediaHosts []string

	Workers        int
	QueueSize      int
	JobTimeout     time.Duration
	RefreshOnStart bool
}

const (
	defaultPort            = "5000"
	defaultUpstreamBaseURL = "https://monster-siren.hypergryph.com/api"
	defaultHTTPTimeout     = 30 * time.Second
	defaultMaxRetries      = 3
	defaultRetryBackoff    = 500 * time.Millisecond
	defaultRequestsPerSec  = 5
	defaultBurst           = 10
	defaultDBPath          = "siren.db"
	defaultLyricCachePath  = "lyrics.db"
	defaultWorkers         = 2
	defaultQueueSize       = 100
	defaultJobTimeout      = 30 * time.Second
)

// fileConfig is the TOML shape. Durations are strings such as "30s".
type fileConfig struct {
	Port     string `toml:"port"`
	LogLevel string `toml:"log_level"`

	Upstream struct {
		BaseURL        string  `toml:"base_url"`
		HTTPTimeout    string  `toml:"http_timeout"`
		MediaTimeout   string  `toml:"media_timeout"`
		MaxRetries     *int    `toml:"max_retries"`
		RetryBackoff   string  `toml:"retry_backoff"`
		RequestsPerSec float64 `toml:"requests_per_sec"`
		Burst          int     `toml:"burst"`
	} `toml:"upstream"`

	OAuth struct {
		ClientID     string   `toml:"client_id"`
		ClientSecret string   `toml:"client_secret"`
		TokenURL     string   `toml:"token_url"`
		Scopes       []string `toml:"scopes"`
	} `toml:"oauth"`

	Storage struct {
		DBPath         string `toml:"db_path"`
		LyricCachePath string `toml:"lyric_cache_path"`
	} `toml:"storage"`

	Proxy struct {
		AllowedHosts []string `toml:"allowed_hosts"`
	} `toml:"proxy"`

	Worker struct {
		Workers        int    `toml:"workers"`
		QueueSize      int    `toml:"queue_size"`
		JobTimeout     string `toml:"job_timeout"`
		RefreshOnStart *bool  `toml:"refresh_on_start"`
	} `toml:"worker"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Port:            defaultPort,
		LogLevel:        slog.LevelInfo,
		UpstreamBaseURL: defaultUpstreamBaseURL,
		HTTPTimeout:     defaultHTTPTimeout,
		MaxRetries:      defaultMaxRetries,
		RetryBackoff:    defaultRetryBackoff,
		RequestsPerSec:  defaultRequestsPerSec,
		Burst:           defaultBurst,
		DBPath:          defaultDBPath,
		LyricCachePath:  defaultLyricCachePath,
		Workers:         defaultWorkers,
		QueueSize:       defaultQueueSize,
		JobTimeout:      defaultJobTimeout,
		RefreshOnStart:  true,
	}
}

// Load builds the configuration.
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("SIREN_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = defaultQueueSize
	}
	return cfg, nil
}

// OAuthEnabled reports whether upstream calls need a client-credentials token.
func (c *Config) OAuthEnabled() bool {
	return c.OAuthClientID != "" && c.OAuthClientSecret != "" && c.OAuthTokenURL != ""
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	setString(&c.Port, fc.Port)
	if fc.LogLevel != "" {
		c.LogLevel = parseLevelOrDefault(fc.LogLevel, c.LogLevel)
	}

	setString(&c.UpstreamBaseURL, fc.Upstream.BaseURL)
	c.HTTPTimeout = parseDurationOrDefault(fc.Upstream.HTTPTimeout, c.HTTPTimeout)
	c.MediaTimeout = parseDurationOrDefault(fc.Upstream.MediaTimeout, c.MediaTimeout)
	if fc.Upstream.MaxRetries != nil {
		c.MaxRetries = *fc.Upstream.MaxRetries
	}
	c.RetryBackoff = parseDurationOrDefault(fc.Upstream.RetryBackoff, c.RetryBackoff)
	if fc.Upstream.RequestsPerSec > 0 {
		c.RequestsPerSec = fc.Upstream.RequestsPerSec
	}
	if fc.Upstream.Burst > 0 {
		c.Burst = fc.Upstream.Burst
	}

	setString(&c.OAuthClientID, fc.OAuth.ClientID)
	setString(&c.OAuthClientSecret, fc.OAuth.ClientSecret)
	setString(&c.OAuthTokenURL, fc.OAuth.TokenURL)
	if len(fc.OAuth.Scopes) > 0 {
		c.OAuthScopes = fc.OAuth.Scopes
	}

	setString(&c.DBPath, fc.Storage.DBPath)
	setString(&c.LyricCachePath, fc.Storage.LyricCachePath)
	if len(fc.Proxy.AllowedHosts) > 0 {
		c.AllowedMediaHosts = fc.Proxy.AllowedHosts
	}

	if fc.Worker.Workers > 0 {
		c.Workers = fc.Worker.Workers
	}
	if fc.Worker.QueueSize > 0 {
		c.QueueSize = fc.Worker.QueueSize
	}
	c.JobTimeout = parseDurationOrDefault(fc.Worker.JobTimeout, c.JobTimeout)
	if fc.Worker.RefreshOnStart != nil {
		c.RefreshOnStart = *fc.Worker.RefreshOnStart
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.Port, os.Getenv("PORT"))
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = parseLevelOrDefault(v, c.LogLevel)
	}

	setString(&c.UpstreamBaseURL, os.Getenv("SIREN_UPSTREAM_URL"))
	c.HTTPTimeout = parseDurationOrDefault(os.Getenv("HTTP_TIMEOUT"), c.HTTPTimeout)
	c.MediaTimeout = parseDurationOrDefault(os.Getenv("MEDIA_TIMEOUT"), c.MediaTimeout)
	c.MaxRetries = parseIntOrDefault(os.Getenv("UPSTREAM_MAX_RETRIES"), c.MaxRetries)
	c.RetryBackoff = parseDurationOrDefault(os.Getenv("UPSTREAM_RETRY_BACKOFF"), c.RetryBackoff)
	if v := os.Getenv("UPSTREAM_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.RequestsPerSec = f
		} else {
			slog.Warn("could not parse UPSTREAM_RPS, keeping current value", "value", v, "current", c.RequestsPerSec)
		}
	}
	c.Burst = parseIntOrDefault(os.Getenv("UPSTREAM_BURST"), c.Burst)

	setString(&c.OAuthClientID, os.Getenv("UPSTREAM_CLIENT_ID"))
	setString(&c.OAuthClientSecret, os.Getenv("UPSTREAM_CLIENT_SECRET"))
	setString(&c.OAuthTokenURL, os.Getenv("UPSTREAM_TOKEN_URL"))
	if scopes := splitList(os.Getenv("UPSTREAM_SCOPES")); len(scopes) > 0 {
		c.OAuthScopes = scopes
	}

	setString(&c.DBPath, os.Getenv("DB_PATH"))
	setString(&c.LyricCachePath, os.Getenv("LYRIC_CACHE_PATH"))
	if hosts := splitList(os.Getenv("ALLOWED_MEDIA_HOSTS")); len(hosts) > 0 {
		c.AllowedMediaHosts = hosts
	}

	c.Workers = parseIntOrDefault(os.Getenv("WORKERS"), c.Workers)
	c.QueueSize = parseIntOrDefault(os.Getenv("QUEUE_SIZE"), c.QueueSize)
	c.JobTimeout = parseDurationOrDefault(os.Getenv("JOB_TIMEOUT"), c.JobTimeout)
	if v := os.Getenv("REFRESH_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RefreshOnStart = b
		} else {
			slog.Warn("could not parse REFRESH_ON_START, keeping current value", "value", v)
		}
	}
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDurationOrDefault(s string, defaultValue time.Duration) time.Duration {
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		slog.Warn("could not parse duration, using default", "value", s, "default", defaultValue, "error", err)
		return defaultValue
	}
	return d
}

func parseIntOrDefault(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		slog.Warn("could not parse integer, using default", "value", s, "default", defaultValue, "error", err)
		return defaultValue
	}
	return n
}

func parseLevelOrDefault(s string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		slog.Warn("unknown log level, using default", "value", s, "default", defaultValue)
		return defaultValue
	}
	return level
}
