// Package worker provides background processing for catalog maintenance jobs.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ewilliams-labs/siren/internal/core/domain"
)

// Kind names a job type.
type Kind int

const (
	// RefreshCatalog replaces the search snapshot from upstream.
	RefreshCatalog Kind = iota
	// WarmLyrics prefetches a lyric file into the cache.
	WarmLyrics
)

func (k Kind) String() string {
	switch k {
	case RefreshCatalog:
		return "refresh-catalog"
	case WarmLyrics:
		return "warm-lyrics"
	default:
		return "unknown"
	}
}

// Job represents a background task.
type Job struct {
	Kind Kind
	URL  string // lyric url for WarmLyrics
}

// Catalog is the subset of the catalog service the pool drives.
type Catalog interface {
	Refresh(ctx context.Context) (domain.Catalog, error)
	Lyrics(ctx context.Context, lyricURL string) (string, error)
}

// Pool manages background workers for async jobs.
type Pool struct {
	catalog Catalog
	jobs    chan Job
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once
}

// NewPool creates a worker pool with the given queue size. Each job runs
// under its own timeout.
func NewPool(catalog Catalog, queueSize int, timeout time.Duration) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Pool{catalog: catalog, jobs: make(chan Job, queueSize), timeout: timeout}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

// Submit queues a job without blocking. It reports false when the queue is
// full and the job was dropped.
func (p *Pool) Submit(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		slog.Warn("worker queue full, dropping job", "kind", job.Kind, "url", job.URL)
		return false
	}
}

func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	var err error
	switch job.Kind {
	case RefreshCatalog:
		_, err = p.catalog.Refresh(ctx)
	case WarmLyrics:
		_, err = p.catalog.Lyrics(ctx, job.URL)
	default:
		slog.Warn("worker: unknown job kind", "kind", int(job.Kind))
		return
	}
	if err != nil {
		slog.Warn("worker job failed", "kind", job.Kind, "url", job.URL, "error", err)
		return
	}
	slog.Debug("worker job done", "kind", job.Kind, "elapsed", time.Since(start))
}
