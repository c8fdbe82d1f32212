package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickcart-app/quickcart-backend/api/responses"
	"github.com/quickcart-app/quickcart-backend/internal/catalog"
	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

// StoreList returns the storefronts, optionally filtered by the q query.
func StoreList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stores := svc.ListStores(r.Context(), r.URL.Query().Get("q"))
		responses.WriteSuccess(w, map[string]any{"stores": stores})
	}
}

// StoreDetail returns one store with its product catalog applied with the
// requested category filter and sort.
func StoreDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := chi.URLParam(r, "storeId")

		store, err := svc.GetStore(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sortBy, err := enums.ParseProductSort(r.URL.Query().Get("sort"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort"))
			return
		}

		products, err := svc.ListProducts(r.Context(), storeID, r.URL.Query().Get("category"), r.URL.Query().Get("q"), sortBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"store":    store,
			"products": products,
		})
	}
}

// StoreProducts returns the store's catalog with the requested category
// filter and sort, without the store header.
func StoreProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := chi.URLParam(r, "storeId")

		if _, err := svc.GetStore(r.Context(), storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sortBy, err := enums.ParseProductSort(r.URL.Query().Get("sort"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort"))
			return
		}

		products, err := svc.ListProducts(r.Context(), storeID, r.URL.Query().Get("category"), r.URL.Query().Get("q"), sortBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

// ProductDetail returns one catalog product.
func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.GetProduct(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product": product})
	}
}

type storeMarker struct {
	StoreID     string         `json:"store_id"`
	Name        string         `json:"name"`
	Coordinates types.GeoPoint `json:"coordinates"`
	Address     string         `json:"address"`
	Rating      float64        `json:"rating"`
}

// MapMarkers returns the map pins for every store.
func MapMarkers(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stores := svc.ListStores(r.Context(), "")
		markers := make([]storeMarker, 0, len(stores))
		for _, store := range stores {
			markers = append(markers, storeMarker{
				StoreID:     store.ID,
				Name:        store.Name,
				Coordinates: store.Coordinates,
				Address:     store.Address,
				Rating:      store.Rating,
			})
		}
		responses.WriteSuccess(w, map[string]any{"markers": markers})
	}
}
