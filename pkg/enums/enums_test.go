package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusNextWalksTheLadder(t *testing.T) {
	status := OrderStatusConfirmed
	var seen []OrderStatus
	for {
		seen = append(seen, status)
		next := status.Next()
		if next == status {
			break
		}
		status = next
	}

	assert.Equal(t, []OrderStatus{
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusOnWay,
		OrderStatusDelivered,
	}, seen)
}

func TestOrderStatusNextIsStableOnTerminals(t *testing.T) {
	assert.Equal(t, OrderStatusDelivered, OrderStatusDelivered.Next())
	assert.Equal(t, OrderStatusCancelled, OrderStatusCancelled.Next())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("on_way")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusOnWay, status)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}

func TestParseDeliverySlot(t *testing.T) {
	for _, raw := range []string{"now", "30", "60", "120"} {
		slot, err := ParseDeliverySlot(raw)
		require.NoError(t, err, raw)
		assert.True(t, slot.IsValid())
	}

	_, err := ParseDeliverySlot("45")
	assert.Error(t, err)
}

func TestParseProductSortDefaultsToPopular(t *testing.T) {
	sort, err := ParseProductSort("")
	require.NoError(t, err)
	assert.Equal(t, ProductSortPopular, sort)

	sort, err = ParseProductSort("price")
	require.NoError(t, err)
	assert.Equal(t, ProductSortPrice, sort)

	_, err = ParseProductSort("rating")
	assert.Error(t, err)
}

func TestParseCheckoutStep(t *testing.T) {
	step, err := ParseCheckoutStep("delivery")
	require.NoError(t, err)
	assert.Equal(t, CheckoutStepDelivery, step)

	_, err = ParseCheckoutStep("review")
	assert.Error(t, err)
}
