package orders

import (
	"time"

	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

// LineItem is one purchased product, frozen at submission time.
type LineItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price"`
	Quantity   int    `json:"quantity"`
}

// DeliveryAddress is where the order ships, frozen at submission time.
type DeliveryAddress struct {
	Label       string         `json:"label,omitempty"`
	Street      string         `json:"street"`
	Building    string         `json:"building"`
	Apartment   *string        `json:"apartment,omitempty"`
	Coordinates types.GeoPoint `json:"coordinates"`
}

// Courier is the assigned delivery courier with a live position.
type Courier struct {
	Name     string         `json:"name"`
	Phone    string         `json:"phone"`
	Position types.GeoPoint `json:"position"`
}

// Order is a submitted, paid order. Everything except Status, ETA and the
// courier position is immutable after submission.
type Order struct {
	ID                string             `json:"id"`
	SessionID         string             `json:"-"`
	StoreID           string             `json:"store_id"`
	StoreName         string             `json:"store_name"`
	Items             []LineItem         `json:"items"`
	SubtotalMinor     int64              `json:"subtotal"`
	DeliveryFeeMinor  int64              `json:"delivery_fee"`
	TotalMinor        int64              `json:"total"`
	Address           DeliveryAddress    `json:"address"`
	DeliverySlot      enums.DeliverySlot `json:"delivery_slot"`
	Phone             string             `json:"phone"`
	PaymentReference  string             `json:"payment_reference"`
	Status            enums.OrderStatus  `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
	EstimatedDelivery time.Time          `json:"estimated_delivery"`
	Courier           *Courier           `json:"courier,omitempty"`
}
