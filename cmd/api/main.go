package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewilliams-labs/siren/internal/adapters/boltcache"
	"github.com/ewilliams-labs/siren/internal/adapters/rest"
	"github.com/ewilliams-labs/siren/internal/adapters/siren"
	"github.com/ewilliams-labs/siren/internal/adapters/sqlite"
	"github.com/ewilliams-labs/siren/internal/config"
	"github.com/ewilliams-labs/siren/internal/core/services"
	"github.com/ewilliams-labs/siren/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Driven adapters
	// -- Catalog snapshot
	dbAdapter, err := sqlite.NewAdapter(cfg.DBPath)
	if err != nil {
		return err
	}
	defer dbAdapter.Close()

	// -- Lyric cache
	lyricCache, err := boltcache.Open(cfg.LyricCachePath)
	if err != nil {
		return err
	}
	defer lyricCache.Close()

	// -- Upstream catalog
	apiClient := siren.NewHTTPClient(ctx, cfg.HTTPTimeout, siren.Credentials{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		TokenURL:     cfg.OAuthTokenURL,
		Scopes:       cfg.OAuthScopes,
	})
	upstream := siren.NewClient(apiClient, &http.Client{Timeout: cfg.MediaTimeout}, cfg.UpstreamBaseURL, siren.Settings{
		MaxRetries:     cfg.MaxRetries,
		RetryBackoff:   cfg.RetryBackoff,
		RequestsPerSec: cfg.RequestsPerSec,
		Burst:          cfg.Burst,
	})

	// 3. Core
	svc := services.NewCatalog(upstream, upstream, dbAdapter, lyricCache)

	pool := worker.NewPool(svc, cfg.QueueSize, cfg.JobTimeout)
	pool.Start(cfg.Workers)
	defer pool.Stop()
	if cfg.RefreshOnStart {
		pool.Submit(worker.Job{Kind: worker.RefreshCatalog})
	}

	// 4. Driving adapter
	handler := rest.NewHandler(svc, upstream, pool, rest.Options{AllowedMediaHosts: cfg.AllowedMediaHosts})

	// 5. Serve
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}
	slog.Info("siren API is running",
		"addr", "http://localhost:"+cfg.Port,
		"upstream", cfg.UpstreamBaseURL,
		"oauth", cfg.OAuthEnabled())

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown error", "error", err)
		}
		return nil
	}
}
