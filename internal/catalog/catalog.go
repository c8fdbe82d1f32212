package catalog

import (
	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

// Product is an immutable catalog listing. Prices are integer minor
// currency units.
type Product struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	PriceMinor    int64              `json:"price"`
	OldPriceMinor *int64             `json:"old_price,omitempty"`
	Image         string             `json:"image"`
	Category      string             `json:"category"`
	Tags          []enums.ProductTag `json:"tags,omitempty"`
	InStock       bool               `json:"in_stock"`
	StoreID       string             `json:"store_id"`
}

// HasTag reports whether the product carries the given merchandising tag.
func (p Product) HasTag(tag enums.ProductTag) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Store is an immutable storefront record shown on the map and store pages.
type Store struct {
	ID                         string             `json:"id"`
	Name                       string             `json:"name"`
	Description                string             `json:"description"`
	Rating                     float64            `json:"rating"`
	ReviewCount                int                `json:"review_count"`
	DeliveryTime               string             `json:"delivery_time"`
	DeliveryFeeMinor           int64              `json:"delivery_fee"`
	MinOrderMinor              int64              `json:"min_order"`
	FreeDeliveryThresholdMinor int64              `json:"free_delivery_threshold"`
	Image                      string             `json:"image"`
	CoverImage                 string             `json:"cover_image"`
	WorkingHours               types.WorkingHours `json:"working_hours"`
	Coordinates                types.GeoPoint     `json:"coordinates"`
	Address                    string             `json:"address"`
	Categories                 []string           `json:"categories"`
}
