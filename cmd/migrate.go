package cmd

import (
	"github.com/popuptinybar/tinybar/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the customers and quotes tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireDatabase(cfg); err != nil {
			return err
		}
		pool, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		logger.Info().Msg("schema is up to date")
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("database-url", "", "Postgres connection string")
	rootCmd.AddCommand(migrateCmd)
}
