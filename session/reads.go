package session

import (
	"context"

	"github.com/Hasan-Al-Banna-Nahid/retreat/cache"
	"github.com/Hasan-Al-Banna-Nahid/retreat/envelope"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

type VenuePage struct {
	Venues     []models.Venue    `json:"venues" yaml:"venues"`
	Pagination models.Pagination `json:"pagination" yaml:"pagination"`
	Paginated  bool              `json:"-" yaml:"-"`
}

type BookingPage struct {
	Bookings   []models.Booking  `json:"bookings" yaml:"bookings"`
	Pagination models.Pagination `json:"pagination" yaml:"pagination"`
	Paginated  bool              `json:"-" yaml:"-"`
}

func VenuesKey(f models.VenueFilters) cache.Key {
	return cache.NewKey(ResourceVenues, f.Values().Encode())
}

func BookingsKey(f models.BookingFilters) cache.Key {
	return cache.NewKey(ResourceBookings, f.Values().Encode())
}

// The read methods below return the last good value together with the error
// when a refresh fails.

func (s *Session) Venues(ctx context.Context, f models.VenueFilters) (VenuePage, error) {
	v, _, err := cache.Get(ctx, s.cache, VenuesKey(f), func(ctx context.Context) (VenuePage, error) {
		raw, err := s.remote.ListVenues(ctx, f)
		if err != nil {
			return VenuePage{}, err
		}
		venues := collection[models.Venue](s, "list venues", raw)
		page, ok := envelope.Pagination(raw)
		return VenuePage{Venues: venues, Pagination: page, Paginated: ok}, nil
	})
	return v, err
}

func (s *Session) Venue(ctx context.Context, id string) (models.Venue, error) {
	v, _, err := cache.Get(ctx, s.cache, cache.NewKey(ResourceVenue, id), func(ctx context.Context) (models.Venue, error) {
		raw, err := s.remote.GetVenue(ctx, id)
		if err != nil {
			return models.Venue{}, err
		}
		return single[models.Venue](s, "get venue", raw)
	})
	return v, err
}

func (s *Session) Bookings(ctx context.Context, f models.BookingFilters) (BookingPage, error) {
	v, _, err := cache.Get(ctx, s.cache, BookingsKey(f), func(ctx context.Context) (BookingPage, error) {
		raw, err := s.remote.ListBookings(ctx, f)
		if err != nil {
			return BookingPage{}, err
		}
		bookings := collection[models.Booking](s, "list bookings", raw)
		page, ok := envelope.Pagination(raw)
		return BookingPage{Bookings: bookings, Pagination: page, Paginated: ok}, nil
	})
	return v, err
}

func (s *Session) Booking(ctx context.Context, id string) (models.Booking, error) {
	v, _, err := cache.Get(ctx, s.cache, cache.NewKey(ResourceBooking, id), func(ctx context.Context) (models.Booking, error) {
		raw, err := s.remote.GetBooking(ctx, id)
		if err != nil {
			return models.Booking{}, err
		}
		return single[models.Booking](s, "get booking", raw)
	})
	return v, err
}

func (s *Session) VenueBookings(ctx context.Context, venueID string) ([]models.Booking, error) {
	v, _, err := cache.Get(ctx, s.cache, cache.NewKey(ResourceVenueBookings, venueID), func(ctx context.Context) ([]models.Booking, error) {
		raw, err := s.remote.ListVenueBookings(ctx, venueID)
		if err != nil {
			return nil, err
		}
		return collection[models.Booking](s, "list venue bookings", raw), nil
	})
	return v, err
}

// collection never fails: unrecognized bodies become an empty slice.
func collection[T any](s *Session, op string, raw any) []T {
	records, err := envelope.Records(raw)
	_ = s.warnShape(op, err)
	items, err := envelope.DecodeRecords[T](records)
	_ = s.warnShape(op, err)
	return items
}

// single reports a body without a usable record as NotFound.
func single[T any](s *Session, op string, raw any) (T, error) {
	var zero T
	rec, err := envelope.Record(raw)
	if err == nil {
		var item T
		item, err = envelope.DecodeRecord[T](rec)
		if err == nil {
			return item, nil
		}
	}
	_ = s.warnShape(op, err)
	return zero, &models.Error{Kind: models.KindNotFound, Message: "Resource not found", Err: err}
}
