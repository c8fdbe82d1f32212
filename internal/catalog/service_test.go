package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(SeedStores(), SeedProducts(), nil)
	require.NoError(t, err)
	return svc
}

func TestNewService_Validation(t *testing.T) {
	t.Run("no stores", func(t *testing.T) {
		_, err := NewService(nil, nil, nil)
		require.Error(t, err)
	})

	t.Run("duplicate store id", func(t *testing.T) {
		stores := []Store{{ID: "store-1"}, {ID: "store-1"}}
		_, err := NewService(stores, nil, nil)
		require.ErrorContains(t, err, "duplicate store id")
	})

	t.Run("product references unknown store", func(t *testing.T) {
		stores := []Store{{ID: "store-1"}}
		products := []Product{{ID: "prod-1", StoreID: "store-404"}}
		_, err := NewService(stores, products, nil)
		require.ErrorContains(t, err, "unknown store")
	})
}

func TestListStores_Search(t *testing.T) {
	svc := newTestService(t)

	all := svc.ListStores(context.Background(), "")
	require.Len(t, all, 3)

	matched := svc.ListStores(context.Background(), "fresh")
	require.Len(t, matched, 1)
	assert.Equal(t, "Fresh Market", matched[0].Name)

	none := svc.ListStores(context.Background(), "no such store")
	assert.Empty(t, none)
}

func TestGetStore(t *testing.T) {
	svc := newTestService(t)

	store, err := svc.GetStore(context.Background(), "store-2")
	require.NoError(t, err)
	assert.Equal(t, "Green Grocer", store.Name)

	_, err = svc.GetStore(context.Background(), "store-404")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListProducts_Sorting(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("popular floats hits first", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, "store-1", "", "", enums.ProductSortPopular)
		require.NoError(t, err)
		require.NotEmpty(t, products)
		assert.True(t, products[0].HasTag(enums.ProductTagHit))

		seenNonHit := false
		for _, p := range products {
			if !p.HasTag(enums.ProductTagHit) {
				seenNonHit = true
				continue
			}
			assert.False(t, seenNonHit, "hit-tagged product after non-hit product")
		}
	})

	t.Run("price ascends", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, "store-1", "", "", enums.ProductSortPrice)
		require.NoError(t, err)
		for i := 1; i < len(products); i++ {
			assert.LessOrEqual(t, products[i-1].PriceMinor, products[i].PriceMinor)
		}
	})

	t.Run("new floats new arrivals", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, "store-1", "", "", enums.ProductSortNew)
		require.NoError(t, err)
		require.NotEmpty(t, products)
		assert.True(t, products[0].HasTag(enums.ProductTagNew))
	})

	t.Run("empty sort defaults to popular", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, "store-1", "", "", "")
		require.NoError(t, err)
		require.NotEmpty(t, products)
		assert.True(t, products[0].HasTag(enums.ProductTagHit))
	})
}

func TestListProducts_Filters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("category filter", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, "store-1", "Dairy", "", enums.ProductSortPopular)
		require.NoError(t, err)
		require.NotEmpty(t, products)
		for _, p := range products {
			assert.Equal(t, "Dairy", p.Category)
		}
	})

	t.Run("name query is case-insensitive substring", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, "", "", "MILK", enums.ProductSortPopular)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "prod-2", products[0].ID)
	})

	t.Run("unknown store errors", func(t *testing.T) {
		_, err := svc.ListProducts(ctx, "store-404", "", "", enums.ProductSortPopular)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	})
}

func TestCrossSell(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("skips excluded and out-of-stock", func(t *testing.T) {
		exclude := map[string]struct{}{"prod-1": {}, "prod-2": {}}
		picks := svc.CrossSell(ctx, exclude, 4)
		require.Len(t, picks, 4)
		for _, p := range picks {
			assert.True(t, p.InStock)
			assert.NotContains(t, exclude, p.ID)
		}
	})

	t.Run("limit defaults when non-positive", func(t *testing.T) {
		picks := svc.CrossSell(ctx, nil, 0)
		assert.Len(t, picks, 4)
	})
}
