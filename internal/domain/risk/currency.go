package risk

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCurrency renders v as US dollars with thousands separators and two
// decimals, e.g. 12345.678 -> "$12,345.68" and -5 -> "-$5.00". Rounding is
// half away from zero.
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$NaN"
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	amount, _ := d.Float64()
	return sign + "$" + message.NewPrinter(language.English).Sprintf("%.2f", amount)
}
