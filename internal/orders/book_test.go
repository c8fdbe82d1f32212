package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/quickcart-app/quickcart-backend/pkg/config"
	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

func testOrder(id, sessionID string) Order {
	return Order{
		ID:        id,
		SessionID: sessionID,
		StoreID:   "store-1",
		StoreName: "Fresh Market",
		Items: []LineItem{
			{ProductID: "prod-1", Name: "Bananas, 1kg", PriceMinor: 690, Quantity: 2},
		},
		SubtotalMinor:    1380,
		DeliveryFeeMinor: 199,
		TotalMinor:       1579,
		Address: DeliveryAddress{
			Street:      "Abay Ave",
			Building:    "44",
			Coordinates: types.GeoPoint{Lat: 43.238949, Lng: 76.889709},
		},
		DeliverySlot: enums.DeliverySlotNow,
		Phone:        "+7 700 123 4567",
	}
}

func fastConfig() config.TrackingConfig {
	return config.TrackingConfig{
		StatusInterval:  5 * time.Millisecond,
		CourierInterval: 2 * time.Millisecond,
		InitialETA:      8 * time.Minute,
	}
}

func TestIDGenerator_UniqueWithinSameMillisecond(t *testing.T) {
	var gen IDGenerator
	now := time.Now()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := gen.Next(now)
		_, dup := seen[id]
		require.False(t, dup, "duplicate order id %s", id)
		seen[id] = struct{}{}
	}
}

func TestRecordAndGet(t *testing.T) {
	book := NewBook(fastConfig(), nil)
	ctx := context.Background()

	recorded, err := book.Record(ctx, testOrder("ORD-1", "session-a"))
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, recorded.Status)
	assert.WithinDuration(t, recorded.CreatedAt.Add(8*time.Minute), recorded.EstimatedDelivery, time.Second)

	loaded, err := book.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, recorded.ID, loaded.ID)

	_, err = book.Get(ctx, "ORD-404")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRecord_Validation(t *testing.T) {
	book := NewBook(fastConfig(), nil)
	ctx := context.Background()

	_, err := book.Record(ctx, Order{})
	require.Error(t, err)

	empty := testOrder("ORD-2", "session-a")
	empty.Items = nil
	_, err = book.Record(ctx, empty)
	require.Error(t, err)

	_, err = book.Record(ctx, testOrder("ORD-3", "session-a"))
	require.NoError(t, err)
	_, err = book.Record(ctx, testOrder("ORD-3", "session-a"))
	require.Error(t, err)
}

func TestTrack_ClimbsStatusLadder(t *testing.T) {
	defer goleak.VerifyNone(t)

	book := NewBook(fastConfig(), nil)
	ctx := context.Background()

	_, err := book.Record(ctx, testOrder("ORD-10", "session-a"))
	require.NoError(t, err)

	snapshot, err := book.Track(ctx, "ORD-10")
	require.NoError(t, err)
	require.NotNil(t, snapshot.Courier)
	assert.Equal(t, enums.OrderStatusConfirmed, snapshot.Status)

	require.Eventually(t, func() bool {
		current, err := book.Get(ctx, "ORD-10")
		return err == nil && current.Status == enums.OrderStatusDelivered
	}, time.Second, 5*time.Millisecond)

	// The simulation detaches itself after delivery.
	book.StopAll()
}

func TestTrack_CourierDrifts(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := fastConfig()
	cfg.StatusInterval = time.Hour
	book := NewBook(cfg, nil)
	ctx := context.Background()

	_, err := book.Record(ctx, testOrder("ORD-11", "session-a"))
	require.NoError(t, err)

	start, err := book.Track(ctx, "ORD-11")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		current, err := book.Get(ctx, "ORD-11")
		if err != nil || current.Courier == nil {
			return false
		}
		return current.Courier.Position != start.Courier.Position
	}, time.Second, 2*time.Millisecond)

	book.StopTracking("ORD-11")
}

func TestStopTracking_IsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	book := NewBook(fastConfig(), nil)
	ctx := context.Background()

	_, err := book.Record(ctx, testOrder("ORD-12", "session-a"))
	require.NoError(t, err)
	_, err = book.Track(ctx, "ORD-12")
	require.NoError(t, err)

	book.StopTracking("ORD-12")
	book.StopTracking("ORD-12")
	book.StopTracking("ORD-404")
}

func TestTrack_UnknownOrder(t *testing.T) {
	book := NewBook(fastConfig(), nil)
	_, err := book.Track(context.Background(), "ORD-404")
	require.Error(t, err)
}

func TestListBySessionAndLatest(t *testing.T) {
	book := NewBook(fastConfig(), nil)
	ctx := context.Background()

	first := testOrder("ORD-20", "session-a")
	first.CreatedAt = time.Now().Add(-time.Hour)
	_, err := book.Record(ctx, first)
	require.NoError(t, err)

	second := testOrder("ORD-21", "session-a")
	second.CreatedAt = time.Now()
	_, err = book.Record(ctx, second)
	require.NoError(t, err)

	_, err = book.Record(ctx, testOrder("ORD-22", "session-b"))
	require.NoError(t, err)

	list := book.ListBySession(ctx, "session-a")
	require.Len(t, list, 2)
	assert.Equal(t, "ORD-21", list[0].ID)

	latest, err := book.Latest(ctx, "session-a")
	require.NoError(t, err)
	assert.Equal(t, "ORD-21", latest.ID)

	_, err = book.Latest(ctx, "session-empty")
	require.Error(t, err)
}
