package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the durable shopper profile. It outlives carts and checkout
// drafts and survives restarts. OwnerKey ties the profile to the device
// session that created it; one device holds at most one profile.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerKey  string    `gorm:"column:owner_key;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Phone     string    `gorm:"column:phone;not null;default:''"`
	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
