package cart

import (
	"fmt"
	"strings"

	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/money"
)

// Discount is a display-level promo applied to a cart subtotal. The charged
// amount never changes; checkout always settles subtotal plus delivery fee.
type Discount struct {
	Code            string `json:"code"`
	Percent         int    `json:"percent"`
	DiscountMinor   int64  `json:"discount"`
	DiscountDisplay string `json:"discount_display"`
}

var promoPercents = map[string]int{
	"welcome10": 10,
}

// CheckPromo validates a promo code against the subtotal and returns the
// display discount. Codes are case-insensitive. Unknown codes are a
// validation error; the cart itself is never mutated.
func CheckPromo(code string, subtotalMinor int64) (Discount, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return Discount{}, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}
	percent, ok := promoPercents[normalized]
	if !ok {
		return Discount{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown promo code %q", code))
	}
	discount := money.Percent(subtotalMinor, percent)
	return Discount{
		Code:            normalized,
		Percent:         percent,
		DiscountMinor:   discount,
		DiscountDisplay: money.Format(discount),
	}, nil
}
