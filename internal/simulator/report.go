package simulator

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/pricing"
)

// WriteReport prints the aggregate metrics of a run as an aligned table.
func WriteReport(w io.Writer, m models.QuoteMetrics) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Quotes priced\t%s\n", humanize.Comma(int64(m.TotalQuotes)))
	fmt.Fprintf(tw, "Invalid requests\t%s\n", humanize.Comma(int64(m.InvalidRequests)))
	fmt.Fprintf(tw, "Needing direct contact\t%s\n", humanize.Comma(int64(m.DirectContact)))
	fmt.Fprintf(tw, "Total value\t%s\n", pricing.FormatCurrency(m.TotalRevenue))
	fmt.Fprintf(tw, "Average quote\t%s\n", pricing.FormatCurrency(int64(m.AvgQuoteValue+0.5)))
	fmt.Fprintf(tw, "Volume savings given\t%s\n", pricing.FormatCurrency(m.SavingsGiven))
	fmt.Fprintf(tw, "Upgrades suggested\t%s\n", humanize.Comma(int64(m.UpgradesSuggested)))
	for _, e := range pricing.EventTypes {
		fmt.Fprintf(tw, "  event %s\t%s\n", e, humanize.Comma(int64(m.ByEventType[e])))
	}
	for _, l := range pricing.ServiceLevels {
		fmt.Fprintf(tw, "  service %s\t%s\n", l, humanize.Comma(int64(m.ByServiceLevel[l])))
	}
	return tw.Flush()
}
