package enums

import "fmt"

// ProductSort selects the catalog ordering on the store page.
type ProductSort string

const (
	ProductSortPopular ProductSort = "popular"
	ProductSortPrice   ProductSort = "price"
	ProductSortNew     ProductSort = "new"
)

var validProductSorts = []ProductSort{
	ProductSortPopular,
	ProductSortPrice,
	ProductSortNew,
}

// String implements fmt.Stringer.
func (p ProductSort) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductSort.
func (p ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort, defaulting to
// popular for empty input.
func ParseProductSort(value string) (ProductSort, error) {
	if value == "" {
		return ProductSortPopular, nil
	}
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}
