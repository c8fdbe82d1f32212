package controllers

import (
	"net/http"

	"github.com/quickcart-app/quickcart-backend/api/middleware"
	"github.com/quickcart-app/quickcart-backend/api/responses"
	"github.com/quickcart-app/quickcart-backend/api/validators"
	authsvc "github.com/quickcart-app/quickcart-backend/internal/auth"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User  authsvc.Identity `json:"user"`
	Token string           `json:"token"`
}

// AuthLogin signs the shopper in and returns a session token.
func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		identity, token, err := svc.Login(r.Context(), sessionID, payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{User: identity, Token: token})
	}
}
