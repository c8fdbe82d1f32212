package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quickcart-app/quickcart-backend/internal/profile"
	pkgauth "github.com/quickcart-app/quickcart-backend/pkg/auth"
	"github.com/quickcart-app/quickcart-backend/pkg/config"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
)

// Identity is the signed-in shopper.
type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Service runs the demo sign-in: any non-empty email and password pair is
// accepted, the identity is derived from the email and persisted on the
// session's profile.
type Service interface {
	Login(ctx context.Context, sessionID, email, password string) (Identity, string, error)
}

type service struct {
	profiles profile.Service
	jwt      config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the auth service.
func NewService(profiles profile.Service, jwt config.JWTConfig, logg *logger.Logger) (Service, error) {
	if profiles == nil {
		return nil, errors.New("profile service is required")
	}
	return &service{profiles: profiles, jwt: jwt, logg: logg, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, sessionID, email, password string) (Identity, string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Identity{}, "", pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return Identity{}, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "email and password are required")
	}

	name := displayNameFromEmail(email)
	user, err := s.profiles.SetUser(ctx, sessionID, profile.UserInput{
		Name:  name,
		Email: email,
	})
	if err != nil {
		return Identity{}, "", err
	}

	token, err := pkgauth.MintSessionToken(s.jwt, s.now(), pkgauth.SessionPayload{
		UserID: user.ID.String(),
		Name:   user.Name,
		Email:  user.Email,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		return Identity{}, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithSessionID(ctx, sessionID), "shopper signed in")
	}
	return Identity{UserID: user.ID.String(), Name: user.Name, Email: user.Email}, token, nil
}

// displayNameFromEmail turns "jane.doe@example.com" into "Jane Doe".
func displayNameFromEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Shopper"
	}
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
