package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galangw/article-pipeline/internal/article"
	"github.com/galangw/article-pipeline/internal/coordinator"
	"github.com/galangw/article-pipeline/internal/extract"
	"github.com/galangw/article-pipeline/internal/fetch"
	"github.com/galangw/article-pipeline/internal/metrics"
	"github.com/galangw/article-pipeline/internal/normalize"
	"github.com/galangw/article-pipeline/internal/render"
	"github.com/galangw/article-pipeline/internal/rewrite"
	"github.com/galangw/article-pipeline/internal/sink"
)

const summaryRounding = 10 * time.Millisecond

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape [url...]",
		Short: "Scrape article URLs into the store",
		Long: `Fetches each URL, normalizes the article body, writes a standalone
HTML file per article, and upserts the record into Postgres. URLs
already present in the store are skipped without any network activity.
URLs may be passed as arguments; otherwise scraper.urls from the
configuration is used.`,
		RunE: runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	urls := args
	if len(urls) == 0 {
		urls = cfg.Scraper.URLs
	}
	if len(urls) == 0 {
		return fmt.Errorf("no urls: pass them as arguments or set scraper.urls")
	}

	if addr := cfg.Metrics.ListenAddr; addr != "" {
		srv := metrics.NewServer(addr)
		go func() {
			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Warn("metrics listener stopped", zap.Error(serveErr))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()
		logger.Info("metrics listening", zap.String("addr", addr))
	}

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	fileSink, err := sink.New(cfg.Output.Dir, logger)
	if err != nil {
		return fmt.Errorf("init output dir: %w", err)
	}

	var rewriter article.ImageRewriter
	if cfg.Rewrite.Enabled {
		rewriter = rewrite.New(rewrite.Config{
			Endpoint: cfg.Rewrite.Endpoint,
			Referer:  cfg.Rewrite.Referer,
			Timeout:  cfg.RewriteTimeout(),
		}, logger)
	}

	fetcher := fetch.New(fetch.Config{
		UserAgent:  cfg.Scraper.UserAgent,
		Timeout:    cfg.FetchTimeout(),
		MaxRetries: cfg.HTTP.MaxRetries,
		RetryDelay: cfg.FetchDelay(),
	}, logger)

	processor := coordinator.NewProcessor(
		fetcher,
		extract.New(logger),
		normalize.New(rewriter, logger),
		render.New(),
		store,
		fileSink,
		logger,
	)
	coord := coordinator.New(store, processor, coordinator.Config{
		Concurrency: cfg.Scraper.Concurrency,
	}, logger)

	summary, outcomes, err := coord.Run(cmd.Context(), urls)
	if err != nil {
		return fmt.Errorf("run scrape: %w", err)
	}

	for _, outcome := range outcomes {
		if outcome.Status == article.TaskFailed {
			logger.Warn("url failed",
				zap.String("url", outcome.URL),
				zap.String("error", outcome.Error),
			)
		}
	}
	fmt.Printf("Processed %d urls in %s: %d succeeded, %d skipped, %d failed\n",
		summary.Total, summary.Elapsed.Round(summaryRounding),
		summary.Succeeded, summary.Skipped, summary.Failed)
	return nil
}
