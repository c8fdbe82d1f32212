package cart

import (
	"context"
	"sync"
	"time"

	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/metrics"
)

// ReservationManager runs one stock-hold countdown per session. The countdown
// is purely informational: when it hits zero nothing is released and checkout
// still succeeds, the shopper just loses the freshness promise on screen.
type ReservationManager struct {
	mu      sync.Mutex
	active  map[string]*countdown
	ttl     time.Duration
	tick    time.Duration
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
}

type countdown struct {
	mu        sync.Mutex
	remaining int
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewReservationManager builds the manager with the configured hold TTL.
func NewReservationManager(ttl time.Duration, m *metrics.CheckoutMetrics, logg *logger.Logger) *ReservationManager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReservationManager{
		active:  make(map[string]*countdown),
		ttl:     ttl,
		tick:    time.Second,
		metrics: m,
		logg:    logg,
	}
}

// Start begins a fresh countdown for the session, replacing any countdown
// already running there.
func (r *ReservationManager) Start(ctx context.Context, sessionID string) int {
	seconds := int(r.ttl / time.Second)

	c := &countdown{
		remaining: seconds,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	r.mu.Lock()
	if prev, ok := r.active[sessionID]; ok {
		prev.cancel()
	}
	r.active[sessionID] = c
	r.mu.Unlock()

	r.metrics.ReservationStarted()
	if r.logg != nil {
		r.logg.Info(r.logg.WithSessionID(ctx, sessionID), "reservation countdown started")
	}

	go r.run(c)
	return seconds
}

// run decrements once per tick until zero or cancellation. At zero the
// ticker stops but the entry stays registered showing zero remaining.
func (r *ReservationManager) run(c *countdown) {
	defer close(c.done)
	defer r.metrics.ReservationStopped()

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.remaining > 0 {
				c.remaining--
			}
			remaining := c.remaining
			c.mu.Unlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// Remaining reports the seconds left on the session's countdown. The second
// return is false when no countdown was ever started or it was stopped.
func (r *ReservationManager) Remaining(sessionID string) (int, bool) {
	r.mu.Lock()
	c, ok := r.active[sessionID]
	r.mu.Unlock()
	if !ok {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining, true
}

// Stop cancels the session's countdown. Stopping an absent or already
// stopped countdown is a no-op.
func (r *ReservationManager) Stop(sessionID string) {
	r.mu.Lock()
	c, ok := r.active[sessionID]
	if ok {
		delete(r.active, sessionID)
	}
	r.mu.Unlock()
	if ok {
		c.cancel()
		<-c.done
	}
}

// StopAll cancels every running countdown. Called on shutdown.
func (r *ReservationManager) StopAll() {
	r.mu.Lock()
	all := make([]*countdown, 0, len(r.active))
	for id, c := range r.active {
		all = append(all, c)
		delete(r.active, id)
	}
	r.mu.Unlock()
	for _, c := range all {
		c.cancel()
		<-c.done
	}
}

func (c *countdown) cancel() {
	c.stopOnce.Do(func() { close(c.stop) })
}
