package cart

import (
	"context"
	"sync"
)

// Entry is the persisted shape of one cart line: a product reference and a
// quantity. Product details are resolved from the catalog on read so stored
// carts never go stale against price or naming changes.
type Entry struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// State is the persisted cart for one session, insertion-ordered.
type State struct {
	Entries []Entry `json:"entries"`
}

// Clone deep-copies the state so callers can mutate freely.
func (s State) Clone() State {
	if len(s.Entries) == 0 {
		return State{}
	}
	entries := make([]Entry, len(s.Entries))
	copy(entries, s.Entries)
	return State{Entries: entries}
}

// Store is the cart persistence boundary. The default backend keeps carts in
// process memory so a cart lives exactly as long as the server, mirroring a
// session-only cart. The redis backend adds durability across restarts.
type Store interface {
	Load(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
}

type memoryStore struct {
	mu    sync.RWMutex
	carts map[string]State
}

// NewMemoryStore returns the in-process cart backend.
func NewMemoryStore() Store {
	return &memoryStore{carts: make(map[string]State)}
}

func (m *memoryStore) Load(_ context.Context, sessionID string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.carts[sessionID].Clone(), nil
}

func (m *memoryStore) Save(_ context.Context, sessionID string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = state.Clone()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}
