package enums

import "fmt"

// ProductTag is a merchandising badge on a catalog product.
type ProductTag string

const (
	ProductTagHit  ProductTag = "hit"
	ProductTagSale ProductTag = "sale"
	ProductTagNew  ProductTag = "new"
)

var validProductTags = []ProductTag{
	ProductTagHit,
	ProductTagSale,
	ProductTagNew,
}

// String implements fmt.Stringer.
func (p ProductTag) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductTag.
func (p ProductTag) IsValid() bool {
	for _, candidate := range validProductTags {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductTag converts raw input into a ProductTag.
func ParseProductTag(value string) (ProductTag, error) {
	for _, candidate := range validProductTags {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product tag %q", value)
}
