package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galangw/article-pipeline/internal/export/wxr"
)

func newExportCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored articles as a WordPress WXR file",
		Long: `Reads every stored article and writes a WordPress eXtended RSS
(WXR 1.2) file that the stock WordPress importer accepts. Posts are
numbered sequentially from export.base_post_id in storage order.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExportCommand(cmd, outputFile)
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "output/wordpress-export.xml", "destination file")
	return cmd
}

func runExportCommand(cmd *cobra.Command, outputFile string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListRecords(cmd.Context())
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("nothing to export: store is empty")
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	exporter := wxr.New(wxr.Config{
		BasePostID:         cfg.Export.BasePostID,
		ChannelTitle:       cfg.Export.ChannelTitle,
		ChannelLink:        cfg.Export.ChannelLink,
		ChannelDescription: cfg.Export.ChannelDescription,
		AuthorLogin:        cfg.Export.AuthorLogin,
		AuthorEmail:        cfg.Export.AuthorEmail,
		Category:           cfg.Export.Category,
	}, logger)
	if err := exporter.Write(f, records, time.Now()); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}

	info, err := f.Stat()
	if err == nil {
		logger.Info("export complete",
			zap.Int("articles", len(records)),
			zap.String("file", outputFile),
			zap.Int64("bytes", info.Size()),
		)
	}
	fmt.Printf("Exported %d articles to %s\n", len(records), outputFile)
	return nil
}
