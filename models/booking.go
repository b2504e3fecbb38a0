package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Booking struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	VenueID         string         `gorm:"size:36;index;column:venue_id" json:"venueId"`
	CompanyName     string         `gorm:"size:255" json:"companyName"`
	Email           string         `gorm:"size:255;index" json:"email"`
	StartDate       time.Time      `gorm:"column:start_date;index" json:"startDate"`
	EndDate         time.Time      `gorm:"column:end_date;index" json:"endDate"`
	AttendeeCount   int            `gorm:"column:attendee_count" json:"attendeeCount"`
	Status          BookingStatus  `gorm:"size:16;index;default:PENDING" json:"status"`
	SpecialRequests string         `gorm:"type:text" json:"specialRequests,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// filled by the service from the venues table, not stored
	Venue *VenueSnapshot `gorm:"-" json:"venue,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	return nil
}

// VenueName is empty when the booking carries no venue snapshot.
func (b Booking) VenueName() string {
	if b.Venue == nil {
		return ""
	}
	return b.Venue.Name
}

// Nights is the number of billed nights; a partial night counts as a full one.
func (b Booking) Nights() int64 {
	span := b.EndDate.Sub(b.StartDate)
	if span <= 0 {
		return 0
	}
	nights := int64(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}
