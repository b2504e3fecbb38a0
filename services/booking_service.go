package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Hasan-Al-Banna-Nahid/retreat/events"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
	"github.com/Hasan-Al-Banna-Nahid/retreat/stats"
)

const (
	defaultBookingLimit = 20
	publishTimeout      = 5 * time.Second
)

// BookingService owns booking persistence and enforces the status machine on
// the authority side.
type BookingService struct {
	DB     *gorm.DB
	Events events.Publisher
	Log    *slog.Logger
	Now    func() time.Time
}

func NewBookingService(db *gorm.DB, publisher events.Publisher, log *slog.Logger) *BookingService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &BookingService{DB: db, Events: publisher, Log: log, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *BookingService) filtered(ctx context.Context, f models.BookingFilters, status models.BookingStatus) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.Booking{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if f.VenueID != "" {
		q = q.Where("venue_id = ?", f.VenueID)
	}
	if name := strings.TrimSpace(f.CompanyName); name != "" {
		q = q.Where("LOWER(company_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if email := strings.TrimSpace(f.Email); email != "" {
		q = q.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}
	// date range: bookings overlapping [startDate, endDate)
	if !f.StartDate.IsZero() {
		q = q.Where("end_date > ?", f.StartDate.UTC())
	}
	if !f.EndDate.IsZero() {
		q = q.Where("start_date < ?", f.EndDate.UTC())
	}
	return q
}

func (s *BookingService) List(ctx context.Context, f models.BookingFilters) ([]models.Booking, models.Pagination, error) {
	var status models.BookingStatus
	if f.Status != "" && !strings.EqualFold(f.Status, "ALL") {
		parsed, err := models.ParseStatus(f.Status)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		status = parsed
	}

	var total int64
	if err := s.filtered(ctx, f, status).Count(&total).Error; err != nil {
		return nil, models.Pagination{}, fmt.Errorf("count bookings: %w", err)
	}
	p := models.NewPagination(f.Page, f.Limit, defaultBookingLimit, maxPageLimit, total)

	bookings := []models.Booking{}
	err := s.filtered(ctx, f, status).
		Order("start_date DESC").Order("id").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list bookings: %w", err)
	}
	if err := s.attachVenues(ctx, bookings); err != nil {
		return nil, models.Pagination{}, err
	}
	return bookings, p, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (models.Booking, error) {
	var b models.Booking
	if err := s.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return models.Booking{}, notFound(err, "booking", id)
	}
	one := []models.Booking{b}
	if err := s.attachVenues(ctx, one); err != nil {
		return models.Booking{}, err
	}
	return one[0], nil
}

// ListByVenue returns every booking of a venue, newest stay first.
func (s *BookingService) ListByVenue(ctx context.Context, venueID string) ([]models.Booking, error) {
	var venue models.Venue
	if err := s.DB.WithContext(ctx).First(&venue, "id = ?", venueID).Error; err != nil {
		return nil, notFound(err, "venue", venueID)
	}
	bookings := []models.Booking{}
	err := s.DB.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("start_date DESC").Order("id").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list venue bookings: %w", err)
	}
	snap := venue.Snapshot()
	for i := range bookings {
		bookings[i].Venue = snap
	}
	return bookings, nil
}

// Create stores a new PENDING booking after checking it against the venue's
// capacity.
func (s *BookingService) Create(ctx context.Context, in models.CreateBookingInput) (models.Booking, error) {
	in.Normalize()
	if err := in.Validate(0); err != nil {
		return models.Booking{}, err
	}
	var venue models.Venue
	if err := s.DB.WithContext(ctx).First(&venue, "id = ?", in.VenueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, models.NewValidationError("invalid booking request", map[string]string{"venueId": "venue does not exist"})
		}
		return models.Booking{}, fmt.Errorf("load venue: %w", err)
	}
	if err := in.Validate(venue.Capacity); err != nil {
		return models.Booking{}, err
	}

	b := models.Booking{
		VenueID:         in.VenueID,
		CompanyName:     in.CompanyName,
		Email:           in.Email,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		AttendeeCount:   in.AttendeeCount,
		SpecialRequests: in.SpecialRequests,
		Status:          models.StatusPending,
	}
	if err := s.DB.WithContext(ctx).Create(&b).Error; err != nil {
		if isForeignKeyError(err) {
			return models.Booking{}, models.NewValidationError("invalid booking request", map[string]string{"venueId": "venue does not exist"})
		}
		return models.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	b.Venue = venue.Snapshot()
	s.Log.Info("booking created", "booking_id", b.ID, "venue_id", b.VenueID, "attendees", b.AttendeeCount)
	s.publish(ctx, events.ForBooking(events.BookingCreated, b, s.Now()))
	return b, nil
}

// UpdateStatus applies a status transition. changed is false when the booking
// already had the requested status. The update is conditional on the status
// read inside the transaction, so two approvers racing on the same booking
// cannot both win.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, target models.BookingStatus) (models.Booking, bool, error) {
	var b models.Booking
	var changed bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			return notFound(err, "booking", id)
		}
		var err error
		changed, err = models.CheckTransition(b.Status, target)
		if err != nil || !changed {
			return err
		}
		now := s.Now()
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", id, b.Status).
			Updates(map[string]interface{}{"status": target, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("update booking status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &models.Error{
				Kind:    models.KindInvalidTransition,
				Message: fmt.Sprintf("booking %s changed status concurrently", id),
			}
		}
		b.Status = target
		b.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Booking{}, false, err
	}
	one := []models.Booking{b}
	if err := s.attachVenues(ctx, one); err != nil {
		return models.Booking{}, false, err
	}
	if changed {
		s.Log.Info("booking status changed", "booking_id", id, "status", target)
		s.publish(ctx, events.ForBooking(events.StatusEvent(target), one[0], s.Now()))
	}
	return one[0], changed, nil
}

// Delete soft-deletes a booking in any status.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	var b models.Booking
	if err := s.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return notFound(err, "booking", id)
	}
	if err := s.DB.WithContext(ctx).Delete(&b).Error; err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	s.Log.Info("booking deleted", "booking_id", id, "status", b.Status)
	s.publish(ctx, events.ForBooking(events.BookingDeleted, b, s.Now()))
	return nil
}

// Stats aggregates one venue's bookings at its nightly price, or every booking
// at its own venue's price when venueID is empty.
func (s *BookingService) Stats(ctx context.Context, venueID string) (stats.BookingStats, error) {
	if venueID != "" {
		var venue models.Venue
		if err := s.DB.WithContext(ctx).First(&venue, "id = ?", venueID).Error; err != nil {
			return stats.BookingStats{}, notFound(err, "venue", venueID)
		}
		var bookings []models.Booking
		if err := s.DB.WithContext(ctx).Where("venue_id = ?", venueID).Find(&bookings).Error; err != nil {
			return stats.BookingStats{}, fmt.Errorf("load bookings: %w", err)
		}
		return stats.Compute(bookings, venue.PricePerNight), nil
	}
	var bookings []models.Booking
	if err := s.DB.WithContext(ctx).Find(&bookings).Error; err != nil {
		return stats.BookingStats{}, fmt.Errorf("load bookings: %w", err)
	}
	if err := s.attachVenues(ctx, bookings); err != nil {
		return stats.BookingStats{}, err
	}
	return stats.ComputeWith(bookings, stats.SnapshotPrice(0)), nil
}

// attachVenues fills the display-only venue snapshot. Soft-deleted venues
// still resolve so old bookings keep their names.
func (s *BookingService) attachVenues(ctx context.Context, bookings []models.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]string, 0, len(bookings))
	seen := map[string]bool{}
	for _, b := range bookings {
		if !seen[b.VenueID] {
			seen[b.VenueID] = true
			ids = append(ids, b.VenueID)
		}
	}
	var venues []models.Venue
	if err := s.DB.WithContext(ctx).Unscoped().Where("id IN ?", ids).Find(&venues).Error; err != nil {
		return fmt.Errorf("load venues: %w", err)
	}
	byID := make(map[string]*models.VenueSnapshot, len(venues))
	for _, v := range venues {
		byID[v.ID] = v.Snapshot()
	}
	for i := range bookings {
		bookings[i].Venue = byID[bookings[i].VenueID]
	}
	return nil
}

func (s *BookingService) publish(ctx context.Context, e events.Event) {
	if e.Type == "" {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.Events.Publish(pctx, e); err != nil {
		s.Log.Warn("publish event failed", "type", e.Type, "booking_id", e.BookingID, "error", err)
	}
}
