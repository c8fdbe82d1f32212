package enums

import "fmt"

// DeliverySlot is one of the fixed delivery-time options offered at checkout.
type DeliverySlot string

const (
	DeliverySlotNow     DeliverySlot = "now"
	DeliverySlotPlus30  DeliverySlot = "30"
	DeliverySlotPlus60  DeliverySlot = "60"
	DeliverySlotPlus120 DeliverySlot = "120"
)

var validDeliverySlots = []DeliverySlot{
	DeliverySlotNow,
	DeliverySlotPlus30,
	DeliverySlotPlus60,
	DeliverySlotPlus120,
}

// String implements fmt.Stringer.
func (d DeliverySlot) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliverySlot.
func (d DeliverySlot) IsValid() bool {
	for _, candidate := range validDeliverySlots {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliverySlot converts raw input into a DeliverySlot.
func ParseDeliverySlot(value string) (DeliverySlot, error) {
	for _, candidate := range validDeliverySlots {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery slot %q", value)
}
