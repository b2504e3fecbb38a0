package session

import (
	"context"

	"github.com/Hasan-Al-Banna-Nahid/retreat/cache"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

func (s *Session) CreateVenue(ctx context.Context, in models.VenueInput) (models.Venue, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.Venue{}, err
	}
	var raw any
	err := s.mutate(ctx, "create venue", func(ctx context.Context) (err error) {
		raw, err = s.remote.CreateVenue(ctx, in)
		return err
	}, cache.NewKey(ResourceVenues))
	if err != nil {
		return models.Venue{}, err
	}
	return written(s, raw, "create venue", func(v *models.Venue) { in.Apply(v) }), nil
}

func (s *Session) UpdateVenue(ctx context.Context, id string, in models.VenueInput) (models.Venue, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.Venue{}, err
	}
	var raw any
	err := s.mutate(ctx, "update venue", func(ctx context.Context) (err error) {
		raw, err = s.remote.UpdateVenue(ctx, id, in)
		return err
	}, cache.NewKey(ResourceVenues), cache.NewKey(ResourceVenue, id))
	if err != nil {
		return models.Venue{}, err
	}
	return written(s, raw, "update venue", func(v *models.Venue) {
		v.ID = id
		in.Apply(v)
	}), nil
}

func (s *Session) DeleteVenue(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete venue", func(ctx context.Context) error {
		return s.remote.DeleteVenue(ctx, id)
	}, cache.NewKey(ResourceVenues), cache.NewKey(ResourceVenue, id))
}

// CreateBooking validates the request locally, including the venue's
// capacity, before anything is sent. Date and field errors never reach the
// network.
func (s *Session) CreateBooking(ctx context.Context, in models.CreateBookingInput) (models.Booking, error) {
	in.Normalize()
	if err := in.Validate(0); err != nil {
		return models.Booking{}, err
	}
	venue, err := s.Venue(ctx, in.VenueID)
	if err != nil {
		return models.Booking{}, err
	}
	if err := in.Validate(venue.Capacity); err != nil {
		return models.Booking{}, err
	}

	var raw any
	err = s.mutate(ctx, "create booking", func(ctx context.Context) (err error) {
		raw, err = s.remote.CreateBooking(ctx, in)
		return err
	},
		cache.NewKey(ResourceBookings),
		cache.NewKey(ResourceVenueBookings, in.VenueID),
		cache.NewKey(ResourceBookingStats),
	)
	if err != nil {
		return models.Booking{}, err
	}
	return written(s, raw, "create booking", func(b *models.Booking) {
		b.VenueID = in.VenueID
		b.CompanyName = in.CompanyName
		b.Email = in.Email
		b.StartDate = in.StartDate
		b.EndDate = in.EndDate
		b.AttendeeCount = in.AttendeeCount
		b.SpecialRequests = in.SpecialRequests
		b.Status = models.StatusPending
		b.Venue = venue.Snapshot()
	}), nil
}

// UpdateBookingStatus applies a status transition. A request for the status
// the booking already has is a no-op that sends nothing and reports
// changed=false; a transition out of a terminal status fails with
// InvalidTransition and leaves the booking as it was.
func (s *Session) UpdateBookingStatus(ctx context.Context, id string, target models.BookingStatus) (models.Booking, bool, error) {
	current, err := s.Booking(ctx, id)
	if err != nil {
		return models.Booking{}, false, err
	}
	changed, err := models.CheckTransition(current.Status, target)
	if err != nil || !changed {
		return current, false, err
	}

	var raw any
	err = s.mutate(ctx, "update booking status", func(ctx context.Context) (err error) {
		raw, err = s.remote.UpdateBookingStatus(ctx, id, target)
		return err
	}, bookingKeys(id)...)
	if err != nil {
		return current, false, err
	}
	updated := written(s, raw, "update booking status", func(b *models.Booking) {
		*b = current
		b.Status = target
		b.UpdatedAt = s.now()
	})
	if updated.Venue == nil {
		updated.Venue = current.Venue
	}
	return updated, true, nil
}

func (s *Session) Confirm(ctx context.Context, id string) (models.Booking, bool, error) {
	return s.UpdateBookingStatus(ctx, id, models.StatusConfirmed)
}

func (s *Session) Reject(ctx context.Context, id string) (models.Booking, bool, error) {
	return s.UpdateBookingStatus(ctx, id, models.StatusRejected)
}

// DeleteBooking removes a booking in any status.
func (s *Session) DeleteBooking(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete booking", func(ctx context.Context) error {
		return s.remote.DeleteBooking(ctx, id)
	}, bookingKeys(id)...)
}

// bookingKeys are the reads a change to an existing booking can affect. The
// venue is not always known locally, so every venue's booking list goes.
func bookingKeys(id string) []cache.Key {
	return []cache.Key{
		cache.NewKey(ResourceBookings),
		cache.NewKey(ResourceBooking, id),
		cache.NewKey(ResourceVenueBookings),
		cache.NewKey(ResourceBookingStats),
	}
}

// written decodes the record a write returned. When the body carries none, the
// record is rebuilt locally with fill.
func written[T any](s *Session, raw any, op string, fill func(*T)) T {
	item, err := single[T](s, op, raw)
	if err == nil {
		return item
	}
	var local T
	fill(&local)
	return local
}
