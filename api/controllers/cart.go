package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickcart-app/quickcart-backend/api/middleware"
	"github.com/quickcart-app/quickcart-backend/api/responses"
	"github.com/quickcart-app/quickcart-backend/api/validators"
	cartsvc "github.com/quickcart-app/quickcart-backend/internal/cart"
	"github.com/quickcart-app/quickcart-backend/internal/catalog"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
)

// CartFetch returns the session's cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity"`
}

// CartAddItem merges a product into the cart. An omitted quantity means one,
// matching the storefront's plus button.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity := 1
		if payload.Quantity != nil {
			quantity = *payload.Quantity
		}

		snapshot, err := svc.AddItem(r.Context(), middleware.SessionIDFromContext(r.Context()), payload.ProductID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartUpdateItem sets a line quantity; zero removes the line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.UpdateQuantity(r.Context(), middleware.SessionIDFromContext(r.Context()), chi.URLParam(r, "productId"), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// CartRemoveItem drops a line entirely.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.RemoveItem(r.Context(), middleware.SessionIDFromContext(r.Context()), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snapshot, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

type promoRequest struct {
	Code string `json:"code" validate:"required"`
}

// CartCheckPromo validates a promo code against the current subtotal. The
// discount is display-only; the charged total never changes.
func CartCheckPromo(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload promoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := cartsvc.CheckPromo(payload.Code, snapshot.SubtotalMinor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discount)
	}
}

// CartCrossSell suggests in-stock products not already in the cart.
func CartCrossSell(carts cartsvc.Service, cat catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 4, 1, 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := carts.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exclude := make(map[string]struct{}, len(snapshot.Items))
		for _, item := range snapshot.Items {
			exclude[item.Product.ID] = struct{}{}
		}

		responses.WriteSuccess(w, map[string]any{
			"products": cat.CrossSell(r.Context(), exclude, limit),
		})
	}
}

type reservationResponse struct {
	RemainingSeconds int  `json:"remaining_seconds"`
	Active           bool `json:"active"`
}

// ReservationStatus reports the stock-hold countdown for the session.
func ReservationStatus(reservations *cartsvc.ReservationManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reservations == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations unavailable"))
			return
		}
		remaining, active := reservations.Remaining(middleware.SessionIDFromContext(r.Context()))
		responses.WriteSuccess(w, reservationResponse{RemainingSeconds: remaining, Active: active})
	}
}

// ReservationStart begins (or restarts) the stock-hold countdown when the
// shopper enters the cart view.
func ReservationStart(reservations *cartsvc.ReservationManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reservations == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations unavailable"))
			return
		}
		seconds := reservations.Start(r.Context(), middleware.SessionIDFromContext(r.Context()))
		responses.WriteSuccess(w, reservationResponse{RemainingSeconds: seconds, Active: true})
	}
}

// ReservationStop ends the countdown, e.g. when the cart view is left.
// Stopping an absent countdown is a no-op.
func ReservationStop(reservations *cartsvc.ReservationManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reservations == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations unavailable"))
			return
		}
		reservations.Stop(middleware.SessionIDFromContext(r.Context()))
		responses.WriteSuccess(w, map[string]string{"status": "stopped"})
	}
}
