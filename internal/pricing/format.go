package pricing

import "github.com/dustin/go-humanize"

// FormatCurrency renders a whole peso amount the way es-MX prints MXN with
// no decimals, e.g. 22736 -> "$22,736" and -960 -> "-$960".
func FormatCurrency(amount int64) string {
	if amount < 0 {
		return "-$" + humanize.Comma(-amount)
	}
	return "$" + humanize.Comma(amount)
}
