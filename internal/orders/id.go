package orders

import (
	"fmt"
	"sync"
	"time"
)

// IDGenerator mints order IDs of the form ORD-<unix-millis>. Two orders
// minted inside the same millisecond get strictly increasing timestamps so
// IDs stay unique without widening the format.
type IDGenerator struct {
	mu     sync.Mutex
	lastMS int64
}

// Next returns a fresh order ID for the given instant.
func (g *IDGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.lastMS {
		ms = g.lastMS + 1
	}
	g.lastMS = ms
	return fmt.Sprintf("ORD-%d", ms)
}
