package cmd

import (
	"fmt"
	"os"

	"github.com/popuptinybar/tinybar/internal/logging"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *models.Config
	logger  zerolog.Logger
)

// flagKeys maps command line flags onto config keys. Only flags present on
// the running command are bound, so several commands can share a key.
var flagKeys = map[string]string{
	"log-level":          "log_level",
	"log-format":         "log_format",
	"http-addr":          "http_addr",
	"database-url":       "database_url",
	"rates-file":         "rates_file",
	"kafka-enabled":      "kafka_enabled",
	"kafka-broker-list":  "kafka_broker_list",
	"output-path":        "output_path",
	"output-format":      "output_format",
	"output-destination": "output_destination",
	"expiry-days":        "quote_expiry_days",
	"seed":               "simulation.seed",
	"quote-count":        "simulation.quote_count",
	"start-date":         "simulation.start_date",
	"end-date":           "simulation.end_date",
	"save":               "simulation.save_quotes",
}

var rootCmd = &cobra.Command{
	Use:   "tinybar",
	Short: "Prices and tracks mobile cocktail bar quotes",
	Long: `tinybar prices cocktail catering quotes from event type, guest count, cocktail style,
service level and extras. It serves the quoting API, stores quote requests and can
simulate quote demand for load and analytics work.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		v := viper.New()
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return err
				}
			}
		}
		loaded, err := models.LoadConfig(v, cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		l, err := logging.New(loaded.LogLevel, loaded.LogFormat, os.Stderr)
		if err != nil {
			return err
		}
		cfg, logger = loaded, l
		if used := v.ConfigFileUsed(); used != "" {
			logger.Debug().Str("file", used).Msg("using config file")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.tinybar.yaml or $HOME/.tinybar.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console or json)")
	rootCmd.PersistentFlags().String("rates-file", "", "YAML file overriding the default rate tables")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
