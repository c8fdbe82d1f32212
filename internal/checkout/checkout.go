package checkout

import (
	"time"

	"github.com/quickcart-app/quickcart-backend/internal/cart"
	"github.com/quickcart-app/quickcart-backend/internal/orders"
	"github.com/quickcart-app/quickcart-backend/internal/profile"
	"github.com/quickcart-app/quickcart-backend/pkg/enums"
)

// Draft is the in-progress order for one session. It advances through the
// address, delivery and payment steps and freezes into an order at
// confirmation. Drafts live in memory only; abandoning checkout costs
// nothing durable.
type Draft struct {
	SessionID        string                  `json:"-"`
	Step             enums.CheckoutStep      `json:"step"`
	Items            []cart.Item             `json:"items"`
	SubtotalMinor    int64                   `json:"subtotal"`
	DeliveryFeeMinor int64                   `json:"delivery_fee"`
	TotalMinor       int64                   `json:"total"`
	TotalDisplay     string                  `json:"total_display"`
	Address          *orders.DeliveryAddress `json:"address,omitempty"`
	SuggestedAddress *profile.Address        `json:"suggested_address,omitempty"`
	DeliverySlot     enums.DeliverySlot      `json:"delivery_slot,omitempty"`
	Phone            string                  `json:"phone,omitempty"`
	ReservationSecs  int                     `json:"reservation_seconds"`
	OrderID          string                  `json:"order_id,omitempty"`
	PaymentReference string                  `json:"payment_reference,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`

	// submitting marks a charge in flight so a second payment request on
	// the same draft cannot settle it twice.
	submitting bool
}

// forward is the only legal next step from each station. Confirmation is
// terminal.
var forward = map[enums.CheckoutStep]enums.CheckoutStep{
	enums.CheckoutStepAddress:  enums.CheckoutStepDelivery,
	enums.CheckoutStepDelivery: enums.CheckoutStepPayment,
	enums.CheckoutStepPayment:  enums.CheckoutStepConfirmation,
}

// backward allows stepping back before payment settles. There is no way
// back from confirmation.
var backward = map[enums.CheckoutStep]enums.CheckoutStep{
	enums.CheckoutStepDelivery: enums.CheckoutStepAddress,
	enums.CheckoutStepPayment:  enums.CheckoutStepDelivery,
}
