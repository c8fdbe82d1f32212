package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quickcart-app/quickcart-backend/internal/catalog"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/money"
)

// Item is one resolved cart line.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// LineTotalMinor is the item price times quantity, in minor units.
func (i Item) LineTotalMinor() int64 {
	return i.Product.PriceMinor * int64(i.Quantity)
}

// Snapshot is the fully resolved cart for one session. ItemCount sums
// quantities, not lines.
type Snapshot struct {
	Items           []Item `json:"items"`
	SubtotalMinor   int64  `json:"subtotal"`
	SubtotalDisplay string `json:"subtotal_display"`
	ItemCount       int    `json:"item_count"`
}

// Service is the session-keyed cart engine.
type Service interface {
	Get(ctx context.Context, sessionID string) (Snapshot, error)
	AddItem(ctx context.Context, sessionID, productID string, quantity int) (Snapshot, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (Snapshot, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (Snapshot, error)
	Clear(ctx context.Context, sessionID string) error
	GetItem(ctx context.Context, sessionID, productID string) (Item, bool, error)
}

type engine struct {
	mu      sync.Mutex
	store   Store
	catalog catalog.Service
	logg    *logger.Logger
}

// NewEngine builds the cart engine over the given persistence backend.
func NewEngine(store Store, cat catalog.Service, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, errors.New("cart store is required")
	}
	if cat == nil {
		return nil, errors.New("catalog service is required")
	}
	return &engine{store: store, catalog: cat, logg: logg}, nil
}

func (e *engine) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	if err := requireSession(sessionID); err != nil {
		return Snapshot{}, err
	}
	state, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return e.resolve(ctx, state), nil
}

// AddItem merges the product into the cart: an existing line grows by
// quantity, a new line is appended. A non-positive quantity is rejected so a
// zero or negative line can never be written.
func (e *engine) AddItem(ctx context.Context, sessionID, productID string, quantity int) (Snapshot, error) {
	if err := requireSession(sessionID); err != nil {
		return Snapshot{}, err
	}
	if quantity < 1 {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	product, err := e.catalog.GetProduct(ctx, productID)
	if err != nil {
		return Snapshot{}, err
	}
	if !product.InStock {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q is out of stock", productID))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	merged := false
	for i := range state.Entries {
		if state.Entries[i].ProductID == productID {
			state.Entries[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		state.Entries = append(state.Entries, Entry{ProductID: productID, Quantity: quantity})
	}

	if err := e.store.Save(ctx, sessionID, state); err != nil {
		return Snapshot{}, err
	}
	return e.resolve(ctx, state), nil
}

// UpdateQuantity sets the line quantity. Zero or negative removes the line.
// Updating an absent product is a benign no-op.
func (e *engine) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (Snapshot, error) {
	if err := requireSession(sessionID); err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	changed := false
	entries := state.Entries[:0]
	for _, entry := range state.Entries {
		if entry.ProductID != productID {
			entries = append(entries, entry)
			continue
		}
		changed = true
		if quantity > 0 {
			entry.Quantity = quantity
			entries = append(entries, entry)
		}
	}
	state.Entries = entries

	if changed {
		if err := e.store.Save(ctx, sessionID, state); err != nil {
			return Snapshot{}, err
		}
	}
	return e.resolve(ctx, state), nil
}

// RemoveItem drops the line entirely regardless of quantity.
func (e *engine) RemoveItem(ctx context.Context, sessionID, productID string) (Snapshot, error) {
	return e.UpdateQuantity(ctx, sessionID, productID, 0)
}

// Clear empties the cart.
func (e *engine) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Delete(ctx, sessionID)
}

// GetItem looks up a single resolved line.
func (e *engine) GetItem(ctx context.Context, sessionID, productID string) (Item, bool, error) {
	snapshot, err := e.Get(ctx, sessionID)
	if err != nil {
		return Item{}, false, err
	}
	for _, item := range snapshot.Items {
		if item.Product.ID == productID {
			return item, true, nil
		}
	}
	return Item{}, false, nil
}

// resolve joins stored entries with catalog products. Entries whose product
// no longer exists are dropped from the view.
func (e *engine) resolve(ctx context.Context, state State) Snapshot {
	snapshot := Snapshot{Items: make([]Item, 0, len(state.Entries))}
	for _, entry := range state.Entries {
		product, err := e.catalog.GetProduct(ctx, entry.ProductID)
		if err != nil {
			if e.logg != nil {
				e.logg.Warn(ctx, fmt.Sprintf("dropping cart entry for unknown product %q", entry.ProductID))
			}
			continue
		}
		item := Item{Product: product, Quantity: entry.Quantity}
		snapshot.Items = append(snapshot.Items, item)
		snapshot.SubtotalMinor += item.LineTotalMinor()
		snapshot.ItemCount += entry.Quantity
	}
	snapshot.SubtotalDisplay = money.Format(snapshot.SubtotalMinor)
	return snapshot
}

func requireSession(sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
