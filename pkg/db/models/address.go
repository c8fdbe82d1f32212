package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is one saved delivery address on a shopper profile. Position
// preserves insertion order; the default-address fallback depends on it.
type Address struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Label     string    `gorm:"column:label;not null;default:''"`
	Street    string    `gorm:"column:street;not null"`
	Building  string    `gorm:"column:building;not null"`
	Apartment *string   `gorm:"column:apartment"`
	Lat       float64   `gorm:"column:lat;not null;default:0"`
	Lng       float64   `gorm:"column:lng;not null;default:0"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
