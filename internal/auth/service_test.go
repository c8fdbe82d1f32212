package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcart-app/quickcart-backend/internal/profile"
	pkgauth "github.com/quickcart-app/quickcart-backend/pkg/auth"
	"github.com/quickcart-app/quickcart-backend/pkg/config"
	"github.com/quickcart-app/quickcart-backend/pkg/db"
	"github.com/quickcart-app/quickcart-backend/pkg/db/models"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
)

const testSession = "session-auth"

var testJWT = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "quickcart",
	ExpirationMinutes: 60,
}

func newTestService(t *testing.T) (Service, profile.Service) {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "auth_test.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Migrate(&models.User{}, &models.Address{}))

	profiles, err := profile.NewService(client, nil)
	require.NoError(t, err)

	svc, err := NewService(profiles, testJWT, nil)
	require.NoError(t, err)
	return svc, profiles
}

func TestLogin_AcceptsAnyNonEmptyCredentials(t *testing.T) {
	svc, profiles := newTestService(t)
	ctx := context.Background()

	identity, token, err := svc.Login(ctx, testSession, "jane.doe@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", identity.Name)
	assert.Equal(t, "jane.doe@example.com", identity.Email)
	require.NotEmpty(t, token)

	claims, err := pkgauth.ParseSessionToken(testJWT, token)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, claims.UserID)
	assert.Equal(t, identity.Email, claims.Email)

	// Login persists the identity on the session profile.
	user, found, err := profiles.GetUser(ctx, testSession)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Jane Doe", user.Name)
}

func TestLogin_RejectsEmptyCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, tc := range []struct {
		name, email, password string
	}{
		{"empty email", "", "secret"},
		{"empty password", "jane@example.com", ""},
		{"both empty", "", ""},
		{"whitespace password", "jane@example.com", "   "},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, testSession, tc.email, tc.password)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
		})
	}
}

func TestDisplayNameFromEmail(t *testing.T) {
	assert.Equal(t, "Jane Doe", displayNameFromEmail("jane.doe@example.com"))
	assert.Equal(t, "Ivan", displayNameFromEmail("ivan@example.com"))
	assert.Equal(t, "A B C", displayNameFromEmail("a_b-c@example.com"))
	assert.Equal(t, "Shopper", displayNameFromEmail("@example.com"))
}
