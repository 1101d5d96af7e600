// Package coordinator schedules article tasks across a bounded worker
// pool, skipping URLs that are already present in the store.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/galangw/article-pipeline/internal/article"
	"github.com/galangw/article-pipeline/internal/metrics"
)

const defaultConcurrency = 15

// Config tunes the scheduling behavior.
type Config struct {
	// Concurrency caps the number of tasks in flight at once.
	Concurrency int
}

// Coordinator owns a run: it prefetches known URLs once, filters the
// input against them, and fans the remainder out to workers.
type Coordinator struct {
	store     article.Store
	processor TaskProcessor
	cfg       Config
	logger    *zap.Logger
}

// New builds a Coordinator around a store and a task processor.
func New(store article.Store, processor TaskProcessor, cfg Config, logger *zap.Logger) *Coordinator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store:     store,
		processor: processor,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run processes the given URLs and returns a summary plus the per-URL
// outcomes. Known URLs are skipped without any network activity. The
// known-URL snapshot is taken exactly once, before any task starts, so
// a URL appearing twice in the input is still processed only once.
//
// Run fails as a whole only when the initial store prefetch fails;
// individual task failures are reported through their outcomes.
func (c *Coordinator) Run(ctx context.Context, urls []string) (article.Summary, []article.Outcome, error) {
	start := time.Now()

	existing, err := c.store.ListKnownURLs(ctx)
	if err != nil {
		return article.Summary{}, nil, fmt.Errorf("prefetch known urls: %w", err)
	}
	c.logger.Info("known urls prefetched", zap.Int("count", len(existing)))

	candidates, skipped := Filter(urls, existing)
	outcomes := make([]article.Outcome, 0, len(candidates)+len(skipped))
	for _, url := range skipped {
		c.logger.Info("skipping known url", zap.String("url", url))
		outcomes = append(outcomes, article.Outcome{URL: url, Status: article.TaskSkipped})
	}
	c.logger.Info("run scheduled",
		zap.Int("candidates", len(candidates)),
		zap.Int("skipped", len(skipped)),
		zap.Int("concurrency", c.cfg.Concurrency),
	)

	results := make(chan article.Outcome)
	sem := make(chan struct{}, c.cfg.Concurrency)
	var wg sync.WaitGroup
	for _, url := range candidates {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- c.runTask(ctx, url)
		}(url)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}

	summary := article.Summary{Elapsed: time.Since(start)}
	for _, outcome := range outcomes {
		summary.Total++
		metrics.TasksTotal.WithLabelValues(string(outcome.Status)).Inc()
		switch outcome.Status {
		case article.TaskSucceeded:
			summary.Succeeded++
		case article.TaskSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	c.logger.Info("run finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, outcomes, nil
}

// runTask shields the pool from a panicking processor: the panic is
// converted into a failed outcome for that URL alone.
func (c *Coordinator) runTask(ctx context.Context, url string) (outcome article.Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("task panicked",
				zap.String("url", url),
				zap.Any("panic", r),
			)
			outcome = article.Outcome{
				URL:      url,
				Status:   article.TaskFailed,
				Error:    fmt.Sprintf("panic: %v", r),
				Duration: time.Since(start),
			}
		}
		metrics.TaskDuration.Observe(time.Since(start).Seconds())
	}()
	return c.processor.Process(ctx, url)
}

// Filter splits urls into candidates (unseen, in first-appearance
// order, duplicates collapsed) and skipped (present in existing).
func Filter(urls []string, existing map[string]struct{}) (candidates, skipped []string) {
	seen := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		if _, known := existing[url]; known {
			skipped = append(skipped, url)
			continue
		}
		candidates = append(candidates, url)
	}
	return candidates, skipped
}
