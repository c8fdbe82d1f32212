package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quickcart-app/quickcart-backend/internal/cart"
	"github.com/quickcart-app/quickcart-backend/internal/catalog"
	"github.com/quickcart-app/quickcart-backend/internal/orders"
	"github.com/quickcart-app/quickcart-backend/internal/payments"
	"github.com/quickcart-app/quickcart-backend/internal/profile"
	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/metrics"
	"github.com/quickcart-app/quickcart-backend/pkg/money"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

// Geocoder resolves a free-form address to coordinates. Optional; a nil
// geocoder leaves new addresses without coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.GeoPoint, error)
}

// AddressSelection picks either a saved profile address or a fresh one.
type AddressSelection struct {
	AddressID *uuid.UUID            `json:"address_id,omitempty"`
	New       *profile.AddressInput `json:"new,omitempty"`
	Save      bool                  `json:"save"`
}

// Service drives the checkout flow for each session.
type Service interface {
	Begin(ctx context.Context, sessionID string) (Draft, error)
	Get(ctx context.Context, sessionID string) (Draft, error)
	SelectAddress(ctx context.Context, sessionID string, selection AddressSelection) (Draft, error)
	SelectDelivery(ctx context.Context, sessionID string, slot enums.DeliverySlot, phone string) (Draft, error)
	SubmitPayment(ctx context.Context, sessionID string) (Draft, error)
	Back(ctx context.Context, sessionID string) (Draft, error)
	Abandon(ctx context.Context, sessionID string) error
}

type service struct {
	mu           sync.Mutex
	drafts       map[string]*Draft
	carts        cart.Service
	reservations *cart.ReservationManager
	profiles     profile.Service
	provider     payments.Provider
	book         *orders.Book
	catalog      catalog.Service
	geocoder     Geocoder
	metrics      *metrics.CheckoutMetrics
	logg         *logger.Logger
	feeMinor     int64
	now          func() time.Time
}

// Deps collects the checkout service dependencies.
type Deps struct {
	Carts        cart.Service
	Reservations *cart.ReservationManager
	Profiles     profile.Service
	Provider     payments.Provider
	Book         *orders.Book
	Catalog      catalog.Service
	Geocoder     Geocoder
	Metrics      *metrics.CheckoutMetrics
	Logger       *logger.Logger
	FeeMinor     int64
}

// NewService validates and wires the checkout dependencies.
func NewService(deps Deps) (Service, error) {
	if deps.Carts == nil {
		return nil, errors.New("cart service is required")
	}
	if deps.Profiles == nil {
		return nil, errors.New("profile service is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("payment provider is required")
	}
	if deps.Book == nil {
		return nil, errors.New("order book is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog service is required")
	}
	if deps.FeeMinor < 0 {
		return nil, errors.New("delivery fee must not be negative")
	}
	return &service{
		drafts:       make(map[string]*Draft),
		carts:        deps.Carts,
		reservations: deps.Reservations,
		profiles:     deps.Profiles,
		provider:     deps.Provider,
		book:         deps.Book,
		catalog:      deps.Catalog,
		geocoder:     deps.Geocoder,
		metrics:      deps.Metrics,
		logg:         deps.Logger,
		feeMinor:     deps.FeeMinor,
		now:          time.Now,
	}, nil
}

// Begin snapshots the cart into a fresh draft at the address step. An empty
// cart cannot enter checkout; the caller is redirected back to the cart.
func (s *service) Begin(ctx context.Context, sessionID string) (Draft, error) {
	if err := requireSession(sessionID); err != nil {
		return Draft{}, err
	}

	snapshot, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return Draft{}, err
	}
	if snapshot.ItemCount == 0 {
		return Draft{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty").
			WithDetails(map[string]string{"redirect": "cart"})
	}

	draft := &Draft{
		SessionID:        sessionID,
		Step:             enums.CheckoutStepAddress,
		Items:            snapshot.Items,
		SubtotalMinor:    snapshot.SubtotalMinor,
		DeliveryFeeMinor: s.feeMinor,
		TotalMinor:       snapshot.SubtotalMinor + s.feeMinor,
		CreatedAt:        s.now(),
	}
	draft.TotalDisplay = money.Format(draft.TotalMinor)

	if suggested, err := s.profiles.GetDefaultAddress(ctx, sessionID); err == nil && suggested != nil {
		draft.SuggestedAddress = suggested
	}

	if s.reservations != nil {
		draft.ReservationSecs = s.reservations.Start(ctx, sessionID)
	}

	s.mu.Lock()
	s.drafts[sessionID] = draft
	s.mu.Unlock()

	s.metrics.ObserveStep(draft.Step.String())
	if s.logg != nil {
		s.logg.Info(s.logg.WithSessionID(ctx, sessionID), "checkout started")
	}
	return s.view(*draft), nil
}

// Get returns the current draft.
func (s *service) Get(ctx context.Context, sessionID string) (Draft, error) {
	if err := requireSession(sessionID); err != nil {
		return Draft{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[sessionID]
	if !ok {
		return Draft{}, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}
	return s.view(*draft), nil
}

// SelectAddress resolves the delivery address and advances to the delivery
// step. A saved address is looked up on the profile; a new address needs
// street and building and is geocoded on a best-effort basis. The step guard
// runs before address resolution, so a rejected request writes nothing to
// the profile and never reaches the geocoder.
func (s *service) SelectAddress(ctx context.Context, sessionID string, selection AddressSelection) (Draft, error) {
	if err := requireSession(sessionID); err != nil {
		return Draft{}, err
	}

	s.mu.Lock()
	if _, err := s.draftAt(sessionID, enums.CheckoutStepAddress); err != nil {
		s.mu.Unlock()
		return Draft{}, err
	}
	s.mu.Unlock()

	resolved, err := s.resolveAddress(ctx, sessionID, selection)
	if err != nil {
		return Draft{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.draftAt(sessionID, enums.CheckoutStepAddress)
	if err != nil {
		return Draft{}, err
	}

	draft.Address = resolved
	draft.Step = forward[draft.Step]
	s.metrics.ObserveStep(draft.Step.String())
	return s.view(*draft), nil
}

func (s *service) resolveAddress(ctx context.Context, sessionID string, selection AddressSelection) (*orders.DeliveryAddress, error) {
	switch {
	case selection.AddressID != nil:
		saved, err := s.findSavedAddress(ctx, sessionID, *selection.AddressID)
		if err != nil {
			return nil, err
		}
		return &orders.DeliveryAddress{
			Label:       saved.Label,
			Street:      saved.Street,
			Building:    saved.Building,
			Apartment:   saved.Apartment,
			Coordinates: saved.Coordinates,
		}, nil

	case selection.New != nil:
		input := *selection.New
		if strings.TrimSpace(input.Street) == "" || strings.TrimSpace(input.Building) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "street and building are required")
		}

		coords := input.Coordinates
		if coords.IsZero() && s.geocoder != nil {
			point, err := s.geocoder.Geocode(ctx, fmt.Sprintf("%s %s", input.Street, input.Building))
			if err != nil {
				if s.logg != nil {
					s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "geocoding failed, keeping address without coordinates")
				}
			} else {
				coords = point
			}
		}
		input.Coordinates = coords

		if selection.Save {
			if _, err := s.profiles.AddAddress(ctx, sessionID, input); err != nil {
				return nil, err
			}
		}
		return &orders.DeliveryAddress{
			Label:       strings.TrimSpace(input.Label),
			Street:      strings.TrimSpace(input.Street),
			Building:    strings.TrimSpace(input.Building),
			Apartment:   input.Apartment,
			Coordinates: coords,
		}, nil

	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "an address is required")
	}
}

func (s *service) findSavedAddress(ctx context.Context, sessionID string, addressID uuid.UUID) (profile.Address, error) {
	saved, err := s.profiles.ListAddresses(ctx, sessionID)
	if err != nil {
		return profile.Address{}, err
	}
	for _, addr := range saved {
		if addr.ID == addressID {
			return addr, nil
		}
	}
	return profile.Address{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("address %q not found", addressID))
}

// SelectDelivery fixes the delivery slot and contact phone and advances to
// payment.
func (s *service) SelectDelivery(ctx context.Context, sessionID string, slot enums.DeliverySlot, phone string) (Draft, error) {
	if err := requireSession(sessionID); err != nil {
		return Draft{}, err
	}
	if !slot.IsValid() {
		return Draft{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery slot %q", slot))
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return Draft{}, pkgerrors.New(pkgerrors.CodeValidation, "contact phone is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.draftAt(sessionID, enums.CheckoutStepDelivery)
	if err != nil {
		return Draft{}, err
	}

	draft.DeliverySlot = slot
	draft.Phone = phone
	draft.Step = forward[draft.Step]
	s.metrics.ObserveStep(draft.Step.String())
	return s.view(*draft), nil
}

// SubmitPayment charges the draft total and freezes the draft into an
// order. The charge is refused while the provider is still warming up. The
// draft is marked in-flight before the lock drops, so only one concurrent
// payment request can reach the provider for a given draft. On success the
// cart is cleared, the reservation stops and the draft lands on confirmation.
func (s *service) SubmitPayment(ctx context.Context, sessionID string) (Draft, error) {
	if err := requireSession(sessionID); err != nil {
		return Draft{}, err
	}

	s.mu.Lock()
	draft, err := s.draftAt(sessionID, enums.CheckoutStepPayment)
	if err != nil {
		s.mu.Unlock()
		return Draft{}, err
	}
	if draft.submitting {
		s.mu.Unlock()
		return Draft{}, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is already in progress").
			WithDetails(map[string]string{"current_step": enums.CheckoutStepPayment.String()})
	}
	draft.submitting = true
	pending := *draft
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		if current, ok := s.drafts[sessionID]; ok {
			current.submitting = false
		}
		s.mu.Unlock()
	}

	if !s.provider.Ready() {
		release()
		return Draft{}, pkgerrors.New(pkgerrors.CodePaymentNotReady, "payment provider is not ready yet")
	}

	orderID := s.book.NextID(s.now())
	started := s.now()
	result, err := s.provider.Charge(ctx, pending.TotalMinor, fmt.Sprintf("order %s", orderID))
	s.metrics.ObservePayment(s.now().Sub(started))
	if err != nil {
		release()
		return Draft{}, err
	}

	order := buildOrder(orderID, pending, result.Reference)
	if store, storeErr := s.catalog.GetStore(ctx, order.StoreID); storeErr == nil {
		order.StoreName = store.Name
	}
	if _, err := s.book.Record(ctx, order); err != nil {
		release()
		return Draft{}, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "clearing cart after payment", err)
	}
	if s.reservations != nil {
		s.reservations.Stop(sessionID)
	}

	s.mu.Lock()
	current, ok := s.drafts[sessionID]
	if ok {
		current.Step = enums.CheckoutStepConfirmation
		current.OrderID = orderID
		current.PaymentReference = result.Reference
		current.submitting = false
		pending = *current
	}
	s.mu.Unlock()

	s.metrics.ObserveStep(enums.CheckoutStepConfirmation.String())
	s.metrics.OrderSubmitted()
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(s.logg.WithSessionID(ctx, sessionID), orderID), "order submitted")
	}
	return s.view(pending), nil
}

// Back steps the draft one station backwards. Confirmation is final.
func (s *service) Back(ctx context.Context, sessionID string) (Draft, error) {
	if err := requireSession(sessionID); err != nil {
		return Draft{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[sessionID]
	if !ok {
		return Draft{}, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}
	if draft.submitting {
		return Draft{}, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is already in progress").
			WithDetails(map[string]string{"current_step": draft.Step.String()})
	}
	previous, ok := backward[draft.Step]
	if !ok {
		return Draft{}, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot go back from %s", draft.Step)).
			WithDetails(map[string]string{"current_step": draft.Step.String()})
	}
	draft.Step = previous
	s.metrics.ObserveStep(draft.Step.String())
	return s.view(*draft), nil
}

// Abandon drops the draft and stops the reservation countdown. The cart is
// left intact. Abandoning with no draft in progress is a no-op.
func (s *service) Abandon(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	_, existed := s.drafts[sessionID]
	delete(s.drafts, sessionID)
	s.mu.Unlock()

	if s.reservations != nil {
		s.reservations.Stop(sessionID)
	}
	if existed && s.logg != nil {
		s.logg.Info(s.logg.WithSessionID(ctx, sessionID), "checkout abandoned")
	}
	return nil
}

// draftAt fetches the session draft and enforces the expected step. Callers
// must hold s.mu.
func (s *service) draftAt(sessionID string, expected enums.CheckoutStep) (*Draft, error) {
	draft, ok := s.drafts[sessionID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}
	if draft.Step != expected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("operation requires the %s step", expected)).
			WithDetails(map[string]string{"current_step": draft.Step.String()})
	}
	return draft, nil
}

// view refreshes derived fields on a draft copy before returning it.
func (s *service) view(draft Draft) Draft {
	if s.reservations != nil {
		if remaining, ok := s.reservations.Remaining(draft.SessionID); ok {
			draft.ReservationSecs = remaining
		}
	}
	return draft
}

func buildOrder(orderID string, draft Draft, paymentRef string) orders.Order {
	items := make([]orders.LineItem, 0, len(draft.Items))
	storeID := ""
	for _, item := range draft.Items {
		if storeID == "" {
			storeID = item.Product.StoreID
		}
		items = append(items, orders.LineItem{
			ProductID:  item.Product.ID,
			Name:       item.Product.Name,
			PriceMinor: item.Product.PriceMinor,
			Quantity:   item.Quantity,
		})
	}

	order := orders.Order{
		ID:               orderID,
		SessionID:        draft.SessionID,
		StoreID:          storeID,
		Items:            items,
		SubtotalMinor:    draft.SubtotalMinor,
		DeliveryFeeMinor: draft.DeliveryFeeMinor,
		TotalMinor:       draft.TotalMinor,
		DeliverySlot:     draft.DeliverySlot,
		Phone:            draft.Phone,
		PaymentReference: paymentRef,
	}
	if draft.Address != nil {
		order.Address = *draft.Address
	}
	return order
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
