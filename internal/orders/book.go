package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/quickcart-app/quickcart-backend/pkg/config"
	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

// courierJitter is the maximum random drift applied to the courier position
// per tick, in degrees.
const courierJitter = 0.0005

// Book holds submitted orders in memory and runs the delivery-progress
// simulation used by the tracking screen.
type Book struct {
	mu     sync.Mutex
	orders map[string]*Order
	sims   map[string]*simulation
	ids    IDGenerator
	cfg    config.TrackingConfig
	logg   *logger.Logger
	rng    *rand.Rand
}

type simulation struct {
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewBook builds the order book with the tracking cadence configuration.
func NewBook(cfg config.TrackingConfig, logg *logger.Logger) *Book {
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = 30 * time.Second
	}
	if cfg.CourierInterval <= 0 {
		cfg.CourierInterval = 5 * time.Second
	}
	if cfg.InitialETA <= 0 {
		cfg.InitialETA = 8 * time.Minute
	}
	return &Book{
		orders: make(map[string]*Order),
		sims:   make(map[string]*simulation),
		cfg:    cfg,
		logg:   logg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NextID mints a unique order ID for the given instant.
func (b *Book) NextID(now time.Time) string {
	return b.ids.Next(now)
}

// Record stores a freshly submitted order. The order enters the book
// confirmed with the initial delivery estimate applied.
func (b *Book) Record(ctx context.Context, order Order) (Order, error) {
	if order.ID == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if len(order.Items) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	order.Status = enums.OrderStatusConfirmed
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.EstimatedDelivery = order.CreatedAt.Add(b.cfg.InitialETA)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.orders[order.ID]; exists {
		return Order{}, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("order %q already recorded", order.ID))
	}
	stored := order
	b.orders[order.ID] = &stored

	if b.logg != nil {
		b.logg.Info(b.logg.WithOrderID(ctx, order.ID), "order recorded")
	}
	return order, nil
}

// Get returns a snapshot of the order without touching the simulation.
func (b *Book) Get(_ context.Context, orderID string) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored, ok := b.orders[orderID]
	if !ok {
		return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %q not found", orderID))
	}
	return *stored, nil
}

// ListBySession returns the session's orders, newest first.
func (b *Book) ListBySession(_ context.Context, sessionID string) []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Order
	for _, stored := range b.orders {
		if stored.SessionID == sessionID {
			out = append(out, *stored)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Track starts the delivery simulation for the order if it is not already
// running and returns the current snapshot. Tracking a delivered order just
// returns it.
func (b *Book) Track(ctx context.Context, orderID string) (Order, error) {
	b.mu.Lock()
	stored, ok := b.orders[orderID]
	if !ok {
		b.mu.Unlock()
		return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %q not found", orderID))
	}

	if stored.Courier == nil {
		stored.Courier = &Courier{
			Name:     "Daniyar",
			Phone:    "+7 701 555 0101",
			Position: stored.Address.Coordinates,
		}
	}

	_, running := b.sims[orderID]
	terminal := stored.Status == enums.OrderStatusDelivered || stored.Status == enums.OrderStatusCancelled
	var sim *simulation
	if !running && !terminal {
		sim = &simulation{
			stop: make(chan struct{}),
			done: make(chan struct{}),
		}
		b.sims[orderID] = sim
	}
	snapshot := *stored
	b.mu.Unlock()

	if sim != nil {
		if b.logg != nil {
			b.logg.Info(b.logg.WithOrderID(ctx, orderID), "order tracking started")
		}
		go b.run(orderID, sim)
	}
	return snapshot, nil
}

// run advances the order on two cadences: the status ladder and the courier
// position drift. It exits when the order reaches a terminal status or the
// simulation is stopped.
func (b *Book) run(orderID string, sim *simulation) {
	defer close(sim.done)

	statusTicker := time.NewTicker(b.cfg.StatusInterval)
	defer statusTicker.Stop()
	courierTicker := time.NewTicker(b.cfg.CourierInterval)
	defer courierTicker.Stop()

	for {
		select {
		case <-sim.stop:
			return
		case <-statusTicker.C:
			if b.advanceStatus(orderID) {
				b.detach(orderID, sim)
				return
			}
		case <-courierTicker.C:
			b.moveCourier(orderID)
		}
	}
}

// advanceStatus walks the order one rung up the ladder. Returns true when
// the order is terminal.
func (b *Book) advanceStatus(orderID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored, ok := b.orders[orderID]
	if !ok {
		return true
	}
	stored.Status = stored.Status.Next()
	remaining := time.Until(stored.EstimatedDelivery)
	if remaining < 0 {
		stored.EstimatedDelivery = time.Now()
	}
	return stored.Status == enums.OrderStatusDelivered || stored.Status == enums.OrderStatusCancelled
}

func (b *Book) moveCourier(orderID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored, ok := b.orders[orderID]
	if !ok || stored.Courier == nil {
		return
	}
	stored.Courier.Position = types.GeoPoint{
		Lat: stored.Courier.Position.Lat + (b.rng.Float64()-0.5)*2*courierJitter,
		Lng: stored.Courier.Position.Lng + (b.rng.Float64()-0.5)*2*courierJitter,
	}
}

// detach removes a finished simulation without waiting on itself.
func (b *Book) detach(orderID string, sim *simulation) {
	b.mu.Lock()
	if current, ok := b.sims[orderID]; ok && current == sim {
		delete(b.sims, orderID)
	}
	b.mu.Unlock()
}

// StopTracking halts the order's simulation. Stopping an order that is not
// being tracked is a no-op.
func (b *Book) StopTracking(orderID string) {
	b.mu.Lock()
	sim, ok := b.sims[orderID]
	if ok {
		delete(b.sims, orderID)
	}
	b.mu.Unlock()
	if ok {
		sim.cancel()
		<-sim.done
	}
}

// StopAll halts every running simulation. Called on shutdown.
func (b *Book) StopAll() {
	b.mu.Lock()
	all := make([]*simulation, 0, len(b.sims))
	for id, sim := range b.sims {
		all = append(all, sim)
		delete(b.sims, id)
	}
	b.mu.Unlock()
	for _, sim := range all {
		sim.cancel()
		<-sim.done
	}
}

func (s *simulation) cancel() {
	s.stopOnce.Do(func() { close(s.stop) })
}

var errNoOrders = errors.New("no orders recorded")

// Latest returns the most recent order for the session.
func (b *Book) Latest(ctx context.Context, sessionID string) (Order, error) {
	list := b.ListBySession(ctx, sessionID)
	if len(list) == 0 {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, errNoOrders, "latest order")
	}
	return list[0], nil
}
