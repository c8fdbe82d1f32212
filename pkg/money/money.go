package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are carried everywhere as int64 minor currency units so that
// arithmetic never accumulates float drift. Decimal enters only at the
// display boundary.

const defaultSymbol = "₸"

// Format renders a minor-unit amount as a grouped display string, e.g.
// 1300 -> "1 300 ₸". The storefront currency has no fractional minor unit
// in display, matching the original price formatting.
func Format(minor int64) string {
	return FormatWithSymbol(minor, defaultSymbol)
}

// FormatWithSymbol renders the amount with an explicit currency symbol.
func FormatWithSymbol(minor int64, symbol string) string {
	d := decimal.NewFromInt(minor)
	digits := d.Abs().String()

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if symbol != "" {
		b.WriteByte(' ')
		b.WriteString(symbol)
	}
	return b.String()
}

// Percent computes pct percent of the amount, rounding half up, staying in
// minor units. Used for display-only promo discounts.
func Percent(minor int64, pct int) int64 {
	if pct <= 0 || minor == 0 {
		return 0
	}
	return decimal.NewFromInt(minor).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
