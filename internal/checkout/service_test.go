package checkout

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcart-app/quickcart-backend/internal/cart"
	"github.com/quickcart-app/quickcart-backend/internal/catalog"
	"github.com/quickcart-app/quickcart-backend/internal/orders"
	"github.com/quickcart-app/quickcart-backend/internal/payments"
	"github.com/quickcart-app/quickcart-backend/internal/profile"
	"github.com/quickcart-app/quickcart-backend/pkg/config"
	"github.com/quickcart-app/quickcart-backend/pkg/db"
	"github.com/quickcart-app/quickcart-backend/pkg/db/models"
	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

const testSession = "session-checkout"

type fixture struct {
	svc      Service
	carts    cart.Service
	profiles profile.Service
	book     *orders.Book
	provider payments.Provider
}

type stubGeocoder struct {
	point types.GeoPoint
	err   error
	calls int
}

func (s *stubGeocoder) Geocode(context.Context, string) (types.GeoPoint, error) {
	s.calls++
	return s.point, s.err
}

func newFixture(t *testing.T, provider payments.Provider, geocoder Geocoder) *fixture {
	t.Helper()

	cat, err := catalog.NewService(catalog.SeedStores(), catalog.SeedProducts(), nil)
	require.NoError(t, err)

	carts, err := cart.NewEngine(cart.NewMemoryStore(), cat, nil)
	require.NoError(t, err)

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "checkout_test.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Migrate(&models.User{}, &models.Address{}))

	profiles, err := profile.NewService(client, nil)
	require.NoError(t, err)

	book := orders.NewBook(config.TrackingConfig{
		StatusInterval:  time.Hour,
		CourierInterval: time.Hour,
		InitialETA:      8 * time.Minute,
	}, nil)
	t.Cleanup(book.StopAll)

	if provider == nil {
		mock := payments.NewMockProvider(0, time.Millisecond)
		t.Cleanup(mock.Close)
		provider = mock
	}

	svc, err := NewService(Deps{
		Carts:    carts,
		Profiles: profiles,
		Provider: provider,
		Book:     book,
		Catalog:  cat,
		Geocoder: geocoder,
		FeeMinor: 199,
	})
	require.NoError(t, err)

	return &fixture{svc: svc, carts: carts, profiles: profiles, book: book, provider: provider}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), testSession, "prod-1", 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(context.Background(), testSession, "prod-7", 1)
	require.NoError(t, err)
}

func (f *fixture) advanceToPayment(t *testing.T) Draft {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, testSession)
	require.NoError(t, err)

	_, err = f.svc.SelectAddress(ctx, testSession, AddressSelection{
		New: &profile.AddressInput{Street: "Abay Ave", Building: "44"},
	})
	require.NoError(t, err)

	draft, err := f.svc.SelectDelivery(ctx, testSession, enums.DeliverySlotPlus30, "+7 700 123 4567")
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStepPayment, draft.Step)
	return draft
}

func TestBegin_EmptyCartRedirects(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.svc.Begin(context.Background(), testSession)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	assert.Equal(t, map[string]string{"redirect": "cart"}, typed.Details())
}

func TestBegin_SnapshotsCartWithFee(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.fillCart(t)

	draft, err := f.svc.Begin(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepAddress, draft.Step)
	assert.Len(t, draft.Items, 2)
	assert.Equal(t, int64(2680), draft.SubtotalMinor)
	assert.Equal(t, int64(199), draft.DeliveryFeeMinor)
	assert.Equal(t, int64(2879), draft.TotalMinor)
	assert.Equal(t, "2 879 ₸", draft.TotalDisplay)
}

func TestBegin_SuggestsDefaultAddress(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.fillCart(t)
	ctx := context.Background()

	saved, err := f.profiles.AddAddress(ctx, testSession, profile.AddressInput{
		Label: "Home", Street: "Abay Ave", Building: "44", IsDefault: true,
	})
	require.NoError(t, err)

	draft, err := f.svc.Begin(ctx, testSession)
	require.NoError(t, err)
	require.NotNil(t, draft.SuggestedAddress)
	assert.Equal(t, saved.ID, draft.SuggestedAddress.ID)
}

func TestStepGuards(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.fillCart(t)
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, testSession)
	require.NoError(t, err)

	t.Run("delivery before address", func(t *testing.T) {
		_, err := f.svc.SelectDelivery(ctx, testSession, enums.DeliverySlotNow, "+7 700 000 0000")
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
		assert.Equal(t, map[string]string{"current_step": "address"}, typed.Details())
	})

	t.Run("payment before address", func(t *testing.T) {
		_, err := f.svc.SubmitPayment(ctx, testSession)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	})

	t.Run("no draft at all", func(t *testing.T) {
		_, err := f.svc.Get(ctx, "session-other")
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	})
}

func TestSelectAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("new address advances to delivery", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.fillCart(t)
		_, err := f.svc.Begin(ctx, testSession)
		require.NoError(t, err)

		draft, err := f.svc.SelectAddress(ctx, testSession, AddressSelection{
			New: &profile.AddressInput{Street: "Abay Ave", Building: "44"},
		})
		require.NoError(t, err)
		assert.Equal(t, enums.CheckoutStepDelivery, draft.Step)
		require.NotNil(t, draft.Address)
		assert.Equal(t, "Abay Ave", draft.Address.Street)
	})

	t.Run("missing street or building", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.fillCart(t)
		_, err := f.svc.Begin(ctx, testSession)
		require.NoError(t, err)

		_, err = f.svc.SelectAddress(ctx, testSession, AddressSelection{
			New: &profile.AddressInput{Street: "Abay Ave"},
		})
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	})

	t.Run("neither saved nor new", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.fillCart(t)
		_, err := f.svc.Begin(ctx, testSession)
		require.NoError(t, err)

		_, err = f.svc.SelectAddress(ctx, testSession, AddressSelection{})
		require.Error(t, err)
	})

	t.Run("saved address by id", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.fillCart(t)

		saved, err := f.profiles.AddAddress(ctx, testSession, profile.AddressInput{
			Label: "Home", Street: "Dostyk Ave", Building: "91",
		})
		require.NoError(t, err)

		_, err = f.svc.Begin(ctx, testSession)
		require.NoError(t, err)

		draft, err := f.svc.SelectAddress(ctx, testSession, AddressSelection{AddressID: &saved.ID})
		require.NoError(t, err)
		require.NotNil(t, draft.Address)
		assert.Equal(t, "Dostyk Ave", draft.Address.Street)
	})

	t.Run("unknown saved address", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.fillCart(t)
		_, err := f.svc.Begin(ctx, testSession)
		require.NoError(t, err)

		id := uuid.New()
		_, err = f.svc.SelectAddress(ctx, testSession, AddressSelection{AddressID: &id})
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	})

	t.Run("save persists to profile", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.fillCart(t)
		_, err := f.svc.Begin(ctx, testSession)
		require.NoError(t, err)

		_, err = f.svc.SelectAddress(ctx, testSession, AddressSelection{
			New:  &profile.AddressInput{Street: "Tole Bi St", Building: "150"},
			Save: true,
		})
		require.NoError(t, err)

		addrs, err := f.profiles.ListAddresses(ctx, testSession)
		require.NoError(t, err)
		require.Len(t, addrs, 1)
		assert.Equal(t, "Tole Bi St", addrs[0].Street)
	})

	t.Run("geocoder fills missing coordinates", func(t *testing.T) {
		geo := &stubGeocoder{point: types.GeoPoint{Lat: 43.25, Lng: 76.95}}
		f := newFixture(t, nil, geo)
		f.fillCart(t)
		_, err := f.svc.Begin(ctx, testSession)
		require.NoError(t, err)

		draft, err := f.svc.SelectAddress(ctx, testSession, AddressSelection{
			New: &profile.AddressInput{Street: "Abay Ave", Building: "44"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, geo.calls)
		assert.Equal(t, geo.point, draft.Address.Coordinates)
	})

	t.Run("no checkout in progress writes nothing", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.fillCart(t)

		_, err := f.svc.SelectAddress(ctx, testSession, AddressSelection{
			New:  &profile.AddressInput{Street: "Abay Ave", Building: "44"},
			Save: true,
		})
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

		addrs, err := f.profiles.ListAddresses(ctx, testSession)
		require.NoError(t, err)
		assert.Empty(t, addrs)
	})

	t.Run("past the address step writes nothing", func(t *testing.T) {
		geo := &stubGeocoder{point: types.GeoPoint{Lat: 43.25, Lng: 76.95}}
		f := newFixture(t, nil, geo)
		f.fillCart(t)
		f.advanceToPayment(t)
		geocodes := geo.calls

		_, err := f.svc.SelectAddress(ctx, testSession, AddressSelection{
			New:  &profile.AddressInput{Street: "Dostyk Ave", Building: "91"},
			Save: true,
		})
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

		assert.Equal(t, geocodes, geo.calls)
		addrs, err := f.profiles.ListAddresses(ctx, testSession)
		require.NoError(t, err)
		assert.Empty(t, addrs)
	})

	t.Run("geocoder failure keeps the address", func(t *testing.T) {
		geo := &stubGeocoder{err: pkgerrors.New(pkgerrors.CodeDependency, "geocode down")}
		f := newFixture(t, nil, geo)
		f.fillCart(t)
		_, err := f.svc.Begin(ctx, testSession)
		require.NoError(t, err)

		draft, err := f.svc.SelectAddress(ctx, testSession, AddressSelection{
			New: &profile.AddressInput{Street: "Abay Ave", Building: "44"},
		})
		require.NoError(t, err)
		assert.True(t, draft.Address.Coordinates.IsZero())
	})
}

func TestSelectDelivery_Validation(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.fillCart(t)
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, testSession)
	require.NoError(t, err)
	_, err = f.svc.SelectAddress(ctx, testSession, AddressSelection{
		New: &profile.AddressInput{Street: "Abay Ave", Building: "44"},
	})
	require.NoError(t, err)

	_, err = f.svc.SelectDelivery(ctx, testSession, "45", "+7 700 000 0000")
	require.Error(t, err)

	_, err = f.svc.SelectDelivery(ctx, testSession, enums.DeliverySlotNow, "   ")
	require.Error(t, err)
}

func TestSubmitPayment_CompletesOrder(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.fillCart(t)
	ctx := context.Background()

	f.advanceToPayment(t)

	draft, err := f.svc.SubmitPayment(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepConfirmation, draft.Step)
	assert.True(t, strings.HasPrefix(draft.OrderID, "ORD-"))
	assert.NotEmpty(t, draft.PaymentReference)

	order, err := f.book.Get(ctx, draft.OrderID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "Fresh Market", order.StoreName)
	assert.Equal(t, int64(2879), order.TotalMinor)
	assert.Equal(t, enums.DeliverySlotPlus30, order.DeliverySlot)

	// The cart is consumed by the purchase.
	snap, err := f.carts.Get(ctx, testSession)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)

	// Confirmation is terminal.
	_, err = f.svc.Back(ctx, testSession)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestSubmitPayment_ProviderNotReady(t *testing.T) {
	mock := payments.NewMockProvider(time.Hour, time.Millisecond)
	t.Cleanup(mock.Close)

	f := newFixture(t, mock, nil)
	f.fillCart(t)
	f.advanceToPayment(t)

	_, err := f.svc.SubmitPayment(context.Background(), testSession)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePaymentNotReady, typed.Code())

	// The draft is still at the payment step; retrying later may succeed.
	draft, err := f.svc.Get(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepPayment, draft.Step)

	// A refused charge leaves the draft open for another attempt, not
	// stuck behind an in-flight marker.
	_, err = f.svc.SubmitPayment(context.Background(), testSession)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePaymentNotReady, typed.Code())
}

func TestSubmitPayment_ConcurrentRequestsChargeOnce(t *testing.T) {
	mock := payments.NewMockProvider(0, 100*time.Millisecond)
	t.Cleanup(mock.Close)

	f := newFixture(t, mock, nil)
	f.fillCart(t)
	f.advanceToPayment(t)
	ctx := context.Background()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := f.svc.SubmitPayment(ctx, testSession)
			errs <- err
		}()
	}

	succeeded := 0
	var rejected []error
	for i := 0; i < 2; i++ {
		if err := <-errs; err == nil {
			succeeded++
		} else {
			rejected = append(rejected, err)
		}
	}

	require.Equal(t, 1, succeeded, "exactly one payment settles the draft")
	require.Len(t, rejected, 1)
	typed := pkgerrors.As(rejected[0])
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	assert.Len(t, f.book.ListBySession(ctx, testSession), 1)
}

type blockingProvider struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingProvider) Name() string { return "blocking" }
func (p *blockingProvider) Ready() bool  { return true }

func (p *blockingProvider) Charge(context.Context, int64, string) (payments.Result, error) {
	close(p.started)
	<-p.release
	return payments.Result{Reference: "blk-1", Provider: "blocking"}, nil
}

func TestBack_RefusedWhileChargeInFlight(t *testing.T) {
	provider := &blockingProvider{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	f := newFixture(t, provider, nil)
	f.fillCart(t)
	f.advanceToPayment(t)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := f.svc.SubmitPayment(ctx, testSession)
		assert.NoError(t, err)
	}()
	<-provider.started

	// The draft cannot step backwards out from under the charge.
	_, err := f.svc.Back(ctx, testSession)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	close(provider.release)
	<-done

	draft, err := f.svc.Get(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepConfirmation, draft.Step)
}

func TestBack_WalksTheLadder(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.fillCart(t)
	ctx := context.Background()

	f.advanceToPayment(t)

	draft, err := f.svc.Back(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepDelivery, draft.Step)

	draft, err = f.svc.Back(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStepAddress, draft.Step)

	_, err = f.svc.Back(ctx, testSession)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestAbandon(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.fillCart(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Abandon(ctx, testSession))

	_, err := f.svc.Begin(ctx, testSession)
	require.NoError(t, err)
	require.NoError(t, f.svc.Abandon(ctx, testSession))

	_, err = f.svc.Get(ctx, testSession)
	require.Error(t, err)

	// The cart survives an abandoned checkout.
	snap, err := f.carts.Get(ctx, testSession)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Items)
}
