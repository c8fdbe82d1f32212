package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickcart-app/quickcart-backend/api/middleware"
	"github.com/quickcart-app/quickcart-backend/api/responses"
	ordersvc "github.com/quickcart-app/quickcart-backend/internal/orders"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
)

// OrderList returns the session's orders, newest first.
func OrderList(book *ordersvc.Book, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := book.ListBySession(r.Context(), middleware.SessionIDFromContext(r.Context()))
		responses.WriteSuccess(w, map[string]any{"orders": list})
	}
}

// OrderLatest returns the session's most recent order, the one the
// confirmation screen links to.
func OrderLatest(book *ordersvc.Book, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := book.Latest(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderDetail returns one order snapshot.
func OrderDetail(book *ordersvc.Book, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := book.Get(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderTrack starts (or continues) the delivery simulation and returns the
// live order snapshot.
func OrderTrack(book *ordersvc.Book, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := book.Track(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderStopTracking halts the delivery simulation for the order.
func OrderStopTracking(book *ordersvc.Book, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book.StopTracking(chi.URLParam(r, "orderId"))
		responses.WriteSuccess(w, map[string]string{"status": "stopped"})
	}
}
