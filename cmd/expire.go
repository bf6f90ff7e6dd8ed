package cmd

import (
	"fmt"

	"github.com/popuptinybar/tinybar/internal/quotes"
	"github.com/spf13/cobra"
)

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Mark pending quotes older than quote_expiry_days as expired",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireDatabase(cfg); err != nil {
			return err
		}
		calc, err := newCalculator(cfg)
		if err != nil {
			return err
		}
		st, err := openStores(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.close()

		svc := quotes.NewService(calc, st.quotes, st.customers, nil, logger,
			quotes.WithExpiryDays(cfg.QuoteExpiryDays))
		n, err := svc.ExpireStale(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d quotes expired\n", n)
		return nil
	},
}

func init() {
	f := expireCmd.Flags()
	f.String("database-url", "", "Postgres connection string")
	f.Int("expiry-days", 30, "Days before a pending quote expires")
	rootCmd.AddCommand(expireCmd)
}
