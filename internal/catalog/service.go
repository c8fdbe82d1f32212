package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
)

// Service exposes the read-only catalog backing the storefront screens.
type Service interface {
	ListStores(ctx context.Context, query string) []Store
	GetStore(ctx context.Context, storeID string) (Store, error)
	ListProducts(ctx context.Context, storeID, category, query string, sortBy enums.ProductSort) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	CrossSell(ctx context.Context, exclude map[string]struct{}, limit int) []Product
}

type service struct {
	stores       []Store
	products     []Product
	storeByID    map[string]Store
	productsByID map[string]Product
	logg         *logger.Logger
}

// NewService indexes the fixtures and validates referential integrity.
func NewService(stores []Store, products []Product, logg *logger.Logger) (Service, error) {
	if len(stores) == 0 {
		return nil, errors.New("catalog requires at least one store")
	}

	storeByID := make(map[string]Store, len(stores))
	for _, s := range stores {
		if s.ID == "" {
			return nil, errors.New("store id is required")
		}
		if _, exists := storeByID[s.ID]; exists {
			return nil, fmt.Errorf("duplicate store id %q", s.ID)
		}
		storeByID[s.ID] = s
	}

	productByID := make(map[string]Product, len(products))
	for _, p := range products {
		if p.ID == "" {
			return nil, errors.New("product id is required")
		}
		if _, exists := productByID[p.ID]; exists {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if _, exists := storeByID[p.StoreID]; !exists {
			return nil, fmt.Errorf("product %q references unknown store %q", p.ID, p.StoreID)
		}
		productByID[p.ID] = p
	}

	return &service{
		stores:       stores,
		products:     products,
		storeByID:    storeByID,
		productsByID: productByID,
		logg:         logg,
	}, nil
}

// ListStores returns stores whose name contains the query, case-insensitive.
// An empty query returns everything.
func (s *service) ListStores(_ context.Context, query string) []Store {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]Store, 0, len(s.stores))
	for _, store := range s.stores {
		if needle != "" && !strings.Contains(strings.ToLower(store.Name), needle) {
			continue
		}
		out = append(out, store)
	}
	return out
}

func (s *service) GetStore(_ context.Context, storeID string) (Store, error) {
	store, ok := s.storeByID[storeID]
	if !ok {
		return Store{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("store %q not found", storeID))
	}
	return store, nil
}

// ListProducts filters the catalog by store, category and name query, then
// applies the requested ordering. Filters compose; all are optional except
// that an unknown store is an error rather than an empty page.
func (s *service) ListProducts(_ context.Context, storeID, category, query string, sortBy enums.ProductSort) ([]Product, error) {
	if storeID != "" {
		if _, ok := s.storeByID[storeID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("store %q not found", storeID))
		}
	}
	if sortBy == "" {
		sortBy = enums.ProductSortPopular
	}
	if !sortBy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product sort %q", sortBy))
	}

	// "all" is the storefront's catch-all category chip.
	if strings.EqualFold(category, "all") {
		category = ""
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if storeID != "" && p.StoreID != storeID {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, sortBy)
	return out, nil
}

// sortProducts orders in place. Popular floats tagged hits to the front,
// price sorts ascending, new floats the new arrivals. All sorts are stable
// so ties keep catalog insertion order.
func sortProducts(products []Product, sortBy enums.ProductSort) {
	switch sortBy {
	case enums.ProductSortPrice:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PriceMinor < products[j].PriceMinor
		})
	case enums.ProductSortNew:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].HasTag(enums.ProductTagNew) && !products[j].HasTag(enums.ProductTagNew)
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].HasTag(enums.ProductTagHit) && !products[j].HasTag(enums.ProductTagHit)
		})
	}
}

func (s *service) GetProduct(_ context.Context, productID string) (Product, error) {
	product, ok := s.productsByID[productID]
	if !ok {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q not found", productID))
	}
	return product, nil
}

// CrossSell picks in-stock products absent from the exclusion set, in catalog
// order, capped at limit. Used for the "add these too" rail under the cart.
func (s *service) CrossSell(_ context.Context, exclude map[string]struct{}, limit int) []Product {
	if limit <= 0 {
		limit = 4
	}
	out := make([]Product, 0, limit)
	for _, p := range s.products {
		if !p.InStock {
			continue
		}
		if _, skip := exclude[p.ID]; skip {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}
