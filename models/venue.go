package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Venue struct {
	ID            string                      `gorm:"primaryKey;size:36" json:"id"`
	Name          string                      `gorm:"size:255" json:"name"`
	Description   string                      `gorm:"type:text" json:"description,omitempty"`
	City          string                      `gorm:"size:120;index" json:"city"`
	Capacity      int                         `json:"capacity"`
	PricePerNight int64                       `gorm:"column:price_per_night" json:"pricePerNight"` // minor currency units
	Images        datatypes.JSONSlice[string] `json:"images"`
	Amenities     datatypes.JSONSlice[string] `json:"amenities"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (v *Venue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Images == nil {
		v.Images = datatypes.JSONSlice[string]{}
	}
	if v.Amenities == nil {
		v.Amenities = datatypes.JSONSlice[string]{}
	}
	return nil
}

// Snapshot returns the denormalized view carried on bookings.
func (v Venue) Snapshot() *VenueSnapshot {
	return &VenueSnapshot{
		ID:            v.ID,
		Name:          v.Name,
		City:          v.City,
		Capacity:      v.Capacity,
		PricePerNight: v.PricePerNight,
	}
}

// VenueSnapshot is display-only; the authority stays the source of truth for pricing.
type VenueSnapshot struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	City          string `json:"city"`
	Capacity      int    `json:"capacity"`
	PricePerNight int64  `json:"pricePerNight"`
}
