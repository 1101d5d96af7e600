// Package cmd defines and implements the CLI commands for the
// article-pipeline executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galangw/article-pipeline/internal/config"
	"github.com/galangw/article-pipeline/internal/logging"
	"github.com/galangw/article-pipeline/internal/store/postgres"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article-pipeline",
		Short: "Scrape, normalize and export news articles.",
		Long: `article-pipeline ingests article pages, normalizes their content into
a compact line-oriented HTML form, persists them to Postgres keyed by
URL, and can export the stored articles as a WordPress WXR feed.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults plus SCRAPER_* env)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newInitDBCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger every subcommand
// shares. The caller owns the returned logger's Sync.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func openStore(ctx context.Context, cfg config.Config) (*postgres.Store, error) {
	store, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		Table:    cfg.DB.Table,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}
