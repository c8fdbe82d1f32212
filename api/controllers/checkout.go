package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/quickcart-app/quickcart-backend/api/middleware"
	"github.com/quickcart-app/quickcart-backend/api/responses"
	"github.com/quickcart-app/quickcart-backend/api/validators"
	checkoutsvc "github.com/quickcart-app/quickcart-backend/internal/checkout"
	"github.com/quickcart-app/quickcart-backend/internal/profile"
	"github.com/quickcart-app/quickcart-backend/pkg/enums"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

// CheckoutBegin opens a draft from the current cart.
func CheckoutBegin(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := svc.Begin(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, draft)
	}
}

// CheckoutGet returns the draft in progress.
func CheckoutGet(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

type newAddressPayload struct {
	Label       string          `json:"label"`
	Street      string          `json:"street" validate:"required"`
	Building    string          `json:"building" validate:"required"`
	Apartment   *string         `json:"apartment"`
	Coordinates *types.GeoPoint `json:"coordinates"`
}

type selectAddressRequest struct {
	AddressID *string            `json:"address_id"`
	New       *newAddressPayload `json:"new"`
	Save      bool               `json:"save"`
}

// CheckoutSelectAddress fixes the delivery address.
func CheckoutSelectAddress(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload selectAddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selection := checkoutsvc.AddressSelection{Save: payload.Save}
		if payload.AddressID != nil {
			id, err := uuid.Parse(*payload.AddressID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address id"))
				return
			}
			selection.AddressID = &id
		}
		if payload.New != nil {
			input := profile.AddressInput{
				Label:     payload.New.Label,
				Street:    payload.New.Street,
				Building:  payload.New.Building,
				Apartment: payload.New.Apartment,
			}
			if payload.New.Coordinates != nil {
				input.Coordinates = *payload.New.Coordinates
			}
			selection.New = &input
		}

		draft, err := svc.SelectAddress(r.Context(), middleware.SessionIDFromContext(r.Context()), selection)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

type selectDeliveryRequest struct {
	Slot  string `json:"slot" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// CheckoutSelectDelivery fixes the slot and contact phone.
func CheckoutSelectDelivery(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload selectDeliveryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slot, err := enums.ParseDeliverySlot(payload.Slot)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery slot"))
			return
		}

		draft, err := svc.SelectDelivery(r.Context(), middleware.SessionIDFromContext(r.Context()), slot, payload.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// CheckoutSubmitPayment charges the draft and finalizes the order.
func CheckoutSubmitPayment(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := svc.SubmitPayment(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// CheckoutBack steps the draft one station backwards.
func CheckoutBack(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := svc.Back(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// CheckoutAbandon drops the draft, keeping the cart.
func CheckoutAbandon(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Abandon(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "abandoned"})
	}
}
