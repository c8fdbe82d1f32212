package profile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcart-app/quickcart-backend/pkg/config"
	"github.com/quickcart-app/quickcart-backend/pkg/db"
	"github.com/quickcart-app/quickcart-backend/pkg/db/models"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

const testOwner = "session-test"

func newTestService(t *testing.T) Service {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "profile_test.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Migrate(&models.User{}, &models.Address{}))

	svc, err := NewService(client, nil)
	require.NoError(t, err)
	return svc
}

func TestSetAndGetUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, found, err := svc.GetUser(ctx, testOwner)
	require.NoError(t, err)
	assert.False(t, found)

	created, err := svc.SetUser(ctx, testOwner, UserInput{
		Name:  "Ivan Ivanov",
		Email: "ivan@example.com",
		Phone: "+7 700 123 4567",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	loaded, found, err := svc.GetUser(ctx, testOwner)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, loaded.ID)
	assert.Equal(t, "Ivan Ivanov", loaded.Name)

	// Replacing identity keeps the same profile row.
	updated, err := svc.SetUser(ctx, testOwner, UserInput{
		Name:  "Ivan Petrov",
		Email: "ivan.petrov@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
}

func TestUsersAreIsolatedPerOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetUser(ctx, "owner-a", UserInput{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	_, found, err := svc.GetUser(ctx, "owner-b")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAddAddress_MaterializesProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	addr, err := svc.AddAddress(ctx, testOwner, AddressInput{
		Label:       "Home",
		Street:      "Abay Ave",
		Building:    "44",
		Coordinates: types.GeoPoint{Lat: 43.2, Lng: 76.9},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, addr.ID)

	_, found, err := svc.GetUser(ctx, testOwner)
	require.NoError(t, err)
	assert.True(t, found, "saving an address should materialize the profile")
}

func TestAddAddress_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddAddress(ctx, testOwner, AddressInput{Street: "", Building: "1"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.AddAddress(ctx, testOwner, AddressInput{Street: "Some St", Building: "  "})
	require.Error(t, err)
}

func TestRemoveAddress_AbsentIsNoOp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.RemoveAddress(ctx, testOwner, uuid.New()))

	addr, err := svc.AddAddress(ctx, testOwner, AddressInput{Street: "Abay Ave", Building: "44"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveAddress(ctx, testOwner, addr.ID))
	require.NoError(t, svc.RemoveAddress(ctx, testOwner, addr.ID))

	addrs, err := svc.ListAddresses(ctx, testOwner)
	require.NoError(t, err)
	assert.Empty(t, addrs)
}

func TestDefaultAddressFallback(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("no profile yields none", func(t *testing.T) {
		def, err := svc.GetDefaultAddress(ctx, testOwner)
		require.NoError(t, err)
		assert.Nil(t, def)
	})

	first, err := svc.AddAddress(ctx, testOwner, AddressInput{Label: "Home", Street: "Abay Ave", Building: "44"})
	require.NoError(t, err)
	second, err := svc.AddAddress(ctx, testOwner, AddressInput{Label: "Work", Street: "Dostyk Ave", Building: "91"})
	require.NoError(t, err)

	t.Run("no flag falls back to first saved", func(t *testing.T) {
		def, err := svc.GetDefaultAddress(ctx, testOwner)
		require.NoError(t, err)
		require.NotNil(t, def)
		assert.Equal(t, first.ID, def.ID)
	})

	t.Run("flagged address wins", func(t *testing.T) {
		require.NoError(t, svc.SetDefaultAddress(ctx, testOwner, second.ID))
		def, err := svc.GetDefaultAddress(ctx, testOwner)
		require.NoError(t, err)
		require.NotNil(t, def)
		assert.Equal(t, second.ID, def.ID)
	})

	t.Run("exactly one default at a time", func(t *testing.T) {
		require.NoError(t, svc.SetDefaultAddress(ctx, testOwner, first.ID))
		addrs, err := svc.ListAddresses(ctx, testOwner)
		require.NoError(t, err)

		defaults := 0
		for _, a := range addrs {
			if a.IsDefault {
				defaults++
				assert.Equal(t, first.ID, a.ID)
			}
		}
		assert.Equal(t, 1, defaults)
	})
}

func TestSetDefaultAddress_UnknownAddress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddAddress(ctx, testOwner, AddressInput{Street: "Abay Ave", Building: "44"})
	require.NoError(t, err)

	err = svc.SetDefaultAddress(ctx, testOwner, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestAddAddress_NewDefaultDisplacesOld(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.AddAddress(ctx, testOwner, AddressInput{Street: "Abay Ave", Building: "44", IsDefault: true})
	require.NoError(t, err)
	second, err := svc.AddAddress(ctx, testOwner, AddressInput{Street: "Dostyk Ave", Building: "91", IsDefault: true})
	require.NoError(t, err)

	addrs, err := svc.ListAddresses(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	for _, a := range addrs {
		switch a.ID {
		case first.ID:
			assert.False(t, a.IsDefault)
		case second.ID:
			assert.True(t, a.IsDefault)
		}
	}
}
