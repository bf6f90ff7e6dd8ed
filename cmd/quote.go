package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/popuptinybar/tinybar/internal/pricing"
	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a single event from the command line",
	Example: `  tinybar quote --event-type wedding --guests 100 --style signature --service bartender
  tinybar quote --event-type corporate --guests 80 --style custom --service full_experience --extras fotografo --date 2026-06-06`,
	RunE: runQuote,
}

func init() {
	f := quoteCmd.Flags()
	f.String("event-type", "", "Event type ("+joinValues(pricing.EventTypes)+")")
	f.Int("guests", 0, "Number of guests")
	f.String("style", "", "Cocktail style ("+joinValues(pricing.CocktailStyles)+")")
	f.String("service", "", "Service level ("+joinValues(pricing.ServiceLevels)+")")
	f.StringSlice("extras", nil, "Comma separated extra ids")
	f.String("date", "", "Event date (YYYY-MM-DD)")
	f.Bool("weekend", false, "Treat the event as a weekend event regardless of date")
	f.Bool("json", false, "Print the breakdown as JSON")
	rootCmd.AddCommand(quoteCmd)
}

func joinValues[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}

func runQuote(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	eventType, _ := f.GetString("event-type")
	guests, _ := f.GetInt("guests")
	style, _ := f.GetString("style")
	service, _ := f.GetString("service")
	extras, _ := f.GetStringSlice("extras")
	date, _ := f.GetString("date")
	asJSON, _ := f.GetBool("json")

	in := pricing.QuoteInput{
		EventType:     pricing.EventType(eventType),
		GuestCount:    guests,
		CocktailStyle: pricing.CocktailStyle(style),
		ServiceLevel:  pricing.ServiceLevel(service),
		Extras:        extras,
	}
	if date != "" {
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		in.EventDate = &d
	}
	if f.Changed("weekend") {
		weekend, _ := f.GetBool("weekend")
		in.IsWeekend = &weekend
	}

	calc, err := newCalculator(cfg)
	if err != nil {
		return err
	}
	if res := calc.Validate(in); !res.Valid {
		for _, msg := range res.Errors {
			fmt.Fprintln(cmd.ErrOrStderr(), "-", msg)
		}
		return fmt.Errorf("quote is not valid")
	}
	b, err := calc.Calculate(in)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}
	return printBreakdown(cmd.OutOrStdout(), b)
}

func printBreakdown(out io.Writer, b *pricing.PricingBreakdown) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, line := range b.Breakdown {
		fmt.Fprintf(w, "%s\t%s\t\n", line.Label, pricing.FormatCurrency(line.Amount))
	}
	fmt.Fprintf(w, "Total\t%s\t\n", pricing.FormatCurrency(b.Total))
	if err := w.Flush(); err != nil {
		return err
	}
	if b.Savings != nil {
		fmt.Fprintf(out, "Ahorras %s por volumen (%.0f%%)\n", pricing.FormatCurrency(*b.Savings), b.DiscountRate*100)
	}
	if u := b.RecommendedUpgrade; u != nil {
		fmt.Fprintf(out, "Sugerencia: %s por %s más. %s\n", u.Name, pricing.FormatCurrency(u.AdditionalCost), u.Benefit)
	}
	return nil
}
