package cmd

import (
	"fmt"

	"github.com/popuptinybar/tinybar/internal/events"
	"github.com/popuptinybar/tinybar/internal/export"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored quotes to partitioned parquet, json or csv files",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.String("database-url", "", "Postgres connection string")
	f.String("output-path", "", "Write partitioned files under this directory")
	f.String("output-format", "parquet", "Output file format (parquet, json, csv)")
	f.String("output-destination", "local", "Output destination (local or s3)")
	f.String("status", "", "Only export quotes with this status")
	f.Int("limit", 0, "Maximum number of quotes to export (0 exports all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if err := requireDatabase(cfg); err != nil {
		return err
	}
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	filter := models.QuoteFilter{Limit: limit}
	if status != "" {
		st, err := models.ParseQuoteStatus(status)
		if err != nil {
			return err
		}
		filter.Status = st
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	list, err := st.quotes.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list quotes: %w", err)
	}

	sink, err := export.NewSink(ctx, cfg)
	if err != nil {
		return err
	}
	dest, err := export.New(cfg.OutputFormat, sink)
	if err != nil {
		return err
	}
	topic := events.NewEmitter(nil, cfg.KafkaTopicPrefix, logger).Topic("quotes")

	bar := progressbar.NewOptions(len(list),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("exporting quotes"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	n, err := export.WriteQuotes(dest, topic, "quote_export", list, func() { _ = bar.Add(1) })
	if cerr := dest.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	_ = bar.Finish()
	logger.Info().
		Int("quotes", n).
		Str("format", cfg.OutputFormat).
		Str("destination", cfg.OutputDestination).
		Msg("export completed")
	return nil
}
