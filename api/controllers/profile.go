package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quickcart-app/quickcart-backend/api/middleware"
	"github.com/quickcart-app/quickcart-backend/api/responses"
	"github.com/quickcart-app/quickcart-backend/api/validators"
	profilesvc "github.com/quickcart-app/quickcart-backend/internal/profile"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

// ProfileGet returns the shopper profile with saved addresses.
func ProfileGet(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		user, found, err := svc.GetUser(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
			return
		}

		addresses, err := svc.ListAddresses(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"user":      user,
			"addresses": addresses,
		})
	}
}

type updateProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// ProfileUpdate replaces the profile identity.
func ProfileUpdate(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.SetUser(r.Context(), middleware.SessionIDFromContext(r.Context()), profilesvc.UserInput{
			Name:  payload.Name,
			Email: payload.Email,
			Phone: payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"user": user})
	}
}

type addAddressRequest struct {
	Label       string          `json:"label"`
	Street      string          `json:"street" validate:"required"`
	Building    string          `json:"building" validate:"required"`
	Apartment   *string         `json:"apartment"`
	Coordinates *types.GeoPoint `json:"coordinates"`
	IsDefault   bool            `json:"is_default"`
}

// AddressAdd saves a new delivery address.
func AddressAdd(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addAddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := profilesvc.AddressInput{
			Label:     payload.Label,
			Street:    payload.Street,
			Building:  payload.Building,
			Apartment: payload.Apartment,
			IsDefault: payload.IsDefault,
		}
		if payload.Coordinates != nil {
			input.Coordinates = *payload.Coordinates
		}

		address, err := svc.AddAddress(r.Context(), middleware.SessionIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"address": address})
	}
}

// AddressRemove deletes a saved address. Unknown addresses are a no-op.
func AddressRemove(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addressID, err := uuid.Parse(chi.URLParam(r, "addressId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address id"))
			return
		}

		if err := svc.RemoveAddress(r.Context(), middleware.SessionIDFromContext(r.Context()), addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// AddressSetDefault flags one address as the delivery default.
func AddressSetDefault(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addressID, err := uuid.Parse(chi.URLParam(r, "addressId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address id"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := svc.SetDefaultAddress(r.Context(), sessionID, addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		def, err := svc.GetDefaultAddress(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"default_address": def})
	}
}

// AddressDefault resolves the address to preselect at checkout.
func AddressDefault(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, err := svc.GetDefaultAddress(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"default_address": def})
	}
}
