package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickcart-app/quickcart-backend/pkg/db/models"
	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	"github.com/quickcart-app/quickcart-backend/pkg/logger"
	"github.com/quickcart-app/quickcart-backend/pkg/types"
)

// User is the public shopper profile view.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

// Address is the public saved-address view.
type Address struct {
	ID          uuid.UUID      `json:"id"`
	Label       string         `json:"label"`
	Street      string         `json:"street"`
	Building    string         `json:"building"`
	Apartment   *string        `json:"apartment,omitempty"`
	Coordinates types.GeoPoint `json:"coordinates"`
	IsDefault   bool           `json:"is_default"`
}

// UserInput replaces the whole profile identity.
type UserInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// AddressInput adds one saved address.
type AddressInput struct {
	Label       string         `json:"label"`
	Street      string         `json:"street" validate:"required"`
	Building    string         `json:"building" validate:"required"`
	Apartment   *string        `json:"apartment"`
	Coordinates types.GeoPoint `json:"coordinates"`
	IsDefault   bool           `json:"is_default"`
}

// Service is the durable shopper profile store, keyed by the device session
// that owns the profile.
type Service interface {
	SetUser(ctx context.Context, ownerKey string, input UserInput) (User, error)
	GetUser(ctx context.Context, ownerKey string) (User, bool, error)
	ListAddresses(ctx context.Context, ownerKey string) ([]Address, error)
	AddAddress(ctx context.Context, ownerKey string, input AddressInput) (Address, error)
	RemoveAddress(ctx context.Context, ownerKey string, addressID uuid.UUID) error
	SetDefaultAddress(ctx context.Context, ownerKey string, addressID uuid.UUID) error
	GetDefaultAddress(ctx context.Context, ownerKey string) (*Address, error)
}

// TxRunner is the transaction surface the service needs from the db client.
type TxRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	db   TxRunner
	logg *logger.Logger
}

// NewService wires the profile store over the shared database client.
func NewService(db TxRunner, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, errors.New("db client is required")
	}
	return &service{db: db, logg: logg}, nil
}

// SetUser creates or replaces the profile identity for the owner. Saved
// addresses are untouched.
func (s *service) SetUser(ctx context.Context, ownerKey string, input UserInput) (User, error) {
	if err := requireOwner(ownerKey); err != nil {
		return User{}, err
	}

	var record models.User
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		err := tx.Where("owner_key = ?", ownerKey).First(&record).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.User{
				ID:       uuid.New(),
				OwnerKey: ownerKey,
			}
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
		}

		record.Name = strings.TrimSpace(input.Name)
		record.Email = strings.TrimSpace(input.Email)
		record.Phone = strings.TrimSpace(input.Phone)
		if err := tx.Save(&record).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save profile")
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return toUser(record), nil
}

func (s *service) GetUser(ctx context.Context, ownerKey string) (User, bool, error) {
	if err := requireOwner(ownerKey); err != nil {
		return User{}, false, err
	}
	var record models.User
	err := s.db.DB().WithContext(ctx).Where("owner_key = ?", ownerKey).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	return toUser(record), true, nil
}

func (s *service) ListAddresses(ctx context.Context, ownerKey string) ([]Address, error) {
	if err := requireOwner(ownerKey); err != nil {
		return nil, err
	}
	record, found, err := s.loadUserRecord(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return []Address{}, nil
	}
	rows, err := s.addressRows(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Address, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAddress(row))
	}
	return out, nil
}

// AddAddress saves a new address. A profile that does not exist yet is
// materialized with placeholder identity first, so an address can be saved
// before the shopper ever logs in.
func (s *service) AddAddress(ctx context.Context, ownerKey string, input AddressInput) (Address, error) {
	if err := requireOwner(ownerKey); err != nil {
		return Address{}, err
	}
	if strings.TrimSpace(input.Street) == "" || strings.TrimSpace(input.Building) == "" {
		return Address{}, pkgerrors.New(pkgerrors.CodeValidation, "street and building are required")
	}

	var saved models.Address
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.materializeUser(tx, ownerKey)
		if err != nil {
			return err
		}

		var maxPosition int
		row := tx.Model(&models.Address{}).
			Where("user_id = ?", user.ID).
			Select("COALESCE(MAX(position), 0)")
		if err := row.Scan(&maxPosition).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scan address position")
		}

		saved = models.Address{
			ID:        uuid.New(),
			UserID:    user.ID,
			Label:     strings.TrimSpace(input.Label),
			Street:    strings.TrimSpace(input.Street),
			Building:  strings.TrimSpace(input.Building),
			Apartment: input.Apartment,
			Lat:       input.Coordinates.Lat,
			Lng:       input.Coordinates.Lng,
			IsDefault: input.IsDefault,
			Position:  maxPosition + 1,
		}

		if input.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ?", user.ID).
				Update("is_default", false).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear default flags")
			}
		}
		if err := tx.Create(&saved).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save address")
		}
		return nil
	})
	if err != nil {
		return Address{}, err
	}
	return toAddress(saved), nil
}

// RemoveAddress deletes the address. Removing an absent address is a no-op.
func (s *service) RemoveAddress(ctx context.Context, ownerKey string, addressID uuid.UUID) error {
	if err := requireOwner(ownerKey); err != nil {
		return err
	}
	record, found, err := s.loadUserRecord(ctx, ownerKey)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	err = s.db.DB().WithContext(ctx).
		Where("user_id = ? AND id = ?", record.ID, addressID).
		Delete(&models.Address{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
	}
	return nil
}

// SetDefaultAddress flags exactly one address as default, clearing the flag
// everywhere else in the same transaction.
func (s *service) SetDefaultAddress(ctx context.Context, ownerKey string, addressID uuid.UUID) error {
	if err := requireOwner(ownerKey); err != nil {
		return err
	}
	record, found, err := s.loadUserRecord(ctx, ownerKey)
	if err != nil {
		return err
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var target models.Address
		err := tx.Where("user_id = ? AND id = ?", record.ID, addressID).First(&target).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("address %q not found", addressID))
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}

		if err := tx.Model(&models.Address{}).
			Where("user_id = ?", record.ID).
			Update("is_default", false).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear default flags")
		}
		if err := tx.Model(&models.Address{}).
			Where("id = ?", target.ID).
			Update("is_default", true).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set default flag")
		}
		return nil
	})
}

// GetDefaultAddress resolves the delivery address to preselect: the flagged
// default, else the earliest saved address, else nothing.
func (s *service) GetDefaultAddress(ctx context.Context, ownerKey string) (*Address, error) {
	if err := requireOwner(ownerKey); err != nil {
		return nil, err
	}
	record, found, err := s.loadUserRecord(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	rows, err := s.addressRows(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	for _, row := range rows {
		if row.IsDefault {
			addr := toAddress(row)
			return &addr, nil
		}
	}
	addr := toAddress(rows[0])
	return &addr, nil
}

func (s *service) loadUserRecord(ctx context.Context, ownerKey string) (models.User, bool, error) {
	var record models.User
	err := s.db.DB().WithContext(ctx).Where("owner_key = ?", ownerKey).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	return record, true, nil
}

// materializeUser fetches or lazily creates the owner's profile row inside
// an open transaction.
func (s *service) materializeUser(tx *gorm.DB, ownerKey string) (models.User, error) {
	var record models.User
	err := tx.Where("owner_key = ?", ownerKey).First(&record).Error
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}

	record = models.User{
		ID:       uuid.New(),
		OwnerKey: ownerKey,
		Name:     "Guest",
		Email:    fmt.Sprintf("guest-%s@quickcart.local", ownerKey),
	}
	if err := tx.Create(&record).Error; err != nil {
		return models.User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
	}
	return record, nil
}

func (s *service) addressRows(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := s.db.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	return rows, nil
}

func toUser(record models.User) User {
	return User{
		ID:    record.ID,
		Name:  record.Name,
		Email: record.Email,
		Phone: record.Phone,
	}
}

func toAddress(record models.Address) Address {
	return Address{
		ID:          record.ID,
		Label:       record.Label,
		Street:      record.Street,
		Building:    record.Building,
		Apartment:   record.Apartment,
		Coordinates: types.GeoPoint{Lat: record.Lat, Lng: record.Lng},
		IsDefault:   record.IsDefault,
	}
}

func requireOwner(ownerKey string) error {
	if strings.TrimSpace(ownerKey) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
