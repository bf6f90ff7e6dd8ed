package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/spf13/cobra"
)

var extrasCmd = &cobra.Command{
	Use:   "extras",
	Short: "List the extras catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		calc, err := newCalculator(cfg)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEXTRA\tPRECIO")
		for _, e := range calc.AvailableExtras() {
			price := pricing.FormatCurrency(e.Price)
			if e.PerGuest {
				price += " por persona"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Label, price)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(extrasCmd)
}
