package catalog

import (
	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

func minorPtr(v int64) *int64 { return &v }

// SeedStores returns the built-in storefront fixtures. The catalog is
// read-only at runtime, so the slices are safe to share.
func SeedStores() []Store {
	return []Store{
		{
			ID:                         "store-1",
			Name:                       "Fresh Market",
			Description:                "Fresh produce, dairy and bakery with same-hour delivery",
			Rating:                     4.8,
			ReviewCount:                1243,
			DeliveryTime:               "15-25 min",
			DeliveryFeeMinor:           199,
			MinOrderMinor:              1000,
			FreeDeliveryThresholdMinor: 5000,
			Image:                      "/images/stores/fresh-market.jpg",
			CoverImage:                 "/images/stores/fresh-market-cover.jpg",
			WorkingHours:               types.WorkingHours{Open: "08:00", Close: "23:00"},
			Coordinates:                types.GeoPoint{Lat: 43.238949, Lng: 76.889709},
			Address:                    "Abay Ave 44, Almaty",
			Categories:                 []string{"Fruits", "Vegetables", "Dairy", "Bakery", "Drinks", "Snacks"},
		},
		{
			ID:                         "store-2",
			Name:                       "Green Grocer",
			Description:                "Organic greens and farm vegetables delivered fast",
			Rating:                     4.6,
			ReviewCount:                867,
			DeliveryTime:               "20-35 min",
			DeliveryFeeMinor:           249,
			MinOrderMinor:              1500,
			FreeDeliveryThresholdMinor: 6000,
			Image:                      "/images/stores/green-grocer.jpg",
			CoverImage:                 "/images/stores/green-grocer-cover.jpg",
			WorkingHours:               types.WorkingHours{Open: "09:00", Close: "22:00"},
			Coordinates:                types.GeoPoint{Lat: 43.25654, Lng: 76.92848},
			Address:                    "Dostyk Ave 91, Almaty",
			Categories:                 []string{"Fruits", "Vegetables", "Organic"},
		},
		{
			ID:                         "store-3",
			Name:                       "Night Owl Mini",
			Description:                "Round-the-clock essentials and snacks",
			Rating:                     4.3,
			ReviewCount:                412,
			DeliveryTime:               "10-20 min",
			DeliveryFeeMinor:           149,
			MinOrderMinor:              800,
			FreeDeliveryThresholdMinor: 4000,
			Image:                      "/images/stores/night-owl.jpg",
			CoverImage:                 "/images/stores/night-owl-cover.jpg",
			WorkingHours:               types.WorkingHours{Open: "00:00", Close: "23:59"},
			Coordinates:                types.GeoPoint{Lat: 43.222015, Lng: 76.851248},
			Address:                    "Tole Bi St 150, Almaty",
			Categories:                 []string{"Snacks", "Drinks", "Household"},
		},
	}
}

// SeedProducts returns the built-in product fixtures, insertion-ordered the
// way the storefront lists them before any sort is applied.
func SeedProducts() []Product {
	return []Product{
		{
			ID:          "prod-1",
			Name:        "Bananas, 1kg",
			Description: "Ripe Ecuadorian bananas",
			PriceMinor:  690,
			Image:       "/images/products/bananas.jpg",
			Category:    "Fruits",
			Tags:        []enums.ProductTag{enums.ProductTagHit},
			InStock:     true,
			StoreID:     "store-1",
		},
		{
			ID:            "prod-2",
			Name:          "Whole Milk 3.2%, 1L",
			Description:   "Pasteurized whole milk",
			PriceMinor:    540,
			OldPriceMinor: minorPtr(620),
			Image:         "/images/products/milk.jpg",
			Category:      "Dairy",
			Tags:          []enums.ProductTag{enums.ProductTagSale},
			InStock:       true,
			StoreID:       "store-1",
		},
		{
			ID:          "prod-3",
			Name:        "Sourdough Bread",
			Description: "Stone-baked sourdough loaf",
			PriceMinor:  850,
			Image:       "/images/products/sourdough.jpg",
			Category:    "Bakery",
			Tags:        []enums.ProductTag{enums.ProductTagNew},
			InStock:     true,
			StoreID:     "store-1",
		},
		{
			ID:          "prod-4",
			Name:        "Tomatoes, 1kg",
			Description: "Vine-ripened tomatoes",
			PriceMinor:  980,
			Image:       "/images/products/tomatoes.jpg",
			Category:    "Vegetables",
			InStock:     true,
			StoreID:     "store-1",
		},
		{
			ID:            "prod-5",
			Name:          "Sparkling Water, 1L",
			Description:   "Natural mineral sparkling water",
			PriceMinor:    320,
			OldPriceMinor: minorPtr(380),
			Image:         "/images/products/sparkling-water.jpg",
			Category:      "Drinks",
			Tags:          []enums.ProductTag{enums.ProductTagSale, enums.ProductTagHit},
			InStock:       true,
			StoreID:       "store-1",
		},
		{
			ID:          "prod-6",
			Name:        "Greek Yogurt, 500g",
			Description: "Thick strained yogurt, 5% fat",
			PriceMinor:  1100,
			Image:       "/images/products/greek-yogurt.jpg",
			Category:    "Dairy",
			InStock:     true,
			StoreID:     "store-1",
		},
		{
			ID:          "prod-7",
			Name:        "Dark Chocolate 70%",
			Description: "Single-origin dark chocolate bar",
			PriceMinor:  1300,
			Image:       "/images/products/dark-chocolate.jpg",
			Category:    "Snacks",
			Tags:        []enums.ProductTag{enums.ProductTagNew},
			InStock:     true,
			StoreID:     "store-1",
		},
		{
			ID:          "prod-8",
			Name:        "Ground Coffee, 250g",
			Description: "Medium roast arabica",
			PriceMinor:  2450,
			Image:       "/images/products/coffee.jpg",
			Category:    "Drinks",
			Tags:        []enums.ProductTag{enums.ProductTagHit},
			InStock:     false,
			StoreID:     "store-1",
		},
		{
			ID:          "prod-9",
			Name:        "Avocado, each",
			Description: "Hass avocado, ready to eat",
			PriceMinor:  790,
			Image:       "/images/products/avocado.jpg",
			Category:    "Fruits",
			Tags:        []enums.ProductTag{enums.ProductTagNew},
			InStock:     true,
			StoreID:     "store-2",
		},
		{
			ID:          "prod-10",
			Name:        "Baby Spinach, 200g",
			Description: "Washed organic baby spinach",
			PriceMinor:  1150,
			Image:       "/images/products/spinach.jpg",
			Category:    "Vegetables",
			InStock:     true,
			StoreID:     "store-2",
		},
		{
			ID:            "prod-11",
			Name:          "Honey, 350g",
			Description:   "Raw mountain honey",
			PriceMinor:    1850,
			OldPriceMinor: minorPtr(2100),
			Image:         "/images/products/honey.jpg",
			Category:      "Organic",
			Tags:          []enums.ProductTag{enums.ProductTagSale},
			InStock:       true,
			StoreID:       "store-2",
		},
		{
			ID:          "prod-12",
			Name:        "Potato Chips, 150g",
			Description: "Sea salt kettle chips",
			PriceMinor:  560,
			Image:       "/images/products/chips.jpg",
			Category:    "Snacks",
			Tags:        []enums.ProductTag{enums.ProductTagHit},
			InStock:     true,
			StoreID:     "store-3",
		},
	}
}
