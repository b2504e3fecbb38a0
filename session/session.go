// Package session is the operator's working context: it owns the query cache,
// serves typed reads through it and coordinates writes against the API so
// that every successful mutation invalidates the reads it affects before it
// returns.
//
// A Session is created with New at start-up and torn down with Close.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Hasan-Al-Banna-Nahid/retreat/cache"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

// Cache resource names.
const (
	ResourceVenues        = "venues"
	ResourceVenue         = "venue"
	ResourceBookings      = "bookings"
	ResourceBooking       = "booking"
	ResourceVenueBookings = "venue-bookings"
	ResourceBookingStats  = "booking-stats"
)

// Remote is the booking API. Reads and writes return the decoded response
// body as generic JSON.
type Remote interface {
	ListVenues(ctx context.Context, f models.VenueFilters) (any, error)
	GetVenue(ctx context.Context, id string) (any, error)
	CreateVenue(ctx context.Context, in models.VenueInput) (any, error)
	UpdateVenue(ctx context.Context, id string, in models.VenueInput) (any, error)
	DeleteVenue(ctx context.Context, id string) error

	ListBookings(ctx context.Context, f models.BookingFilters) (any, error)
	GetBooking(ctx context.Context, id string) (any, error)
	ListVenueBookings(ctx context.Context, venueID string) (any, error)
	CreateBooking(ctx context.Context, in models.CreateBookingInput) (any, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (any, error)
	DeleteBooking(ctx context.Context, id string) error
}

type Options struct {
	Retry  cache.RetryPolicy
	Logger *slog.Logger
	Now    func() time.Time
}

// DefaultRetry retries a failed read once after a second.
var DefaultRetry = cache.RetryPolicy{Attempts: 1, Delay: time.Second}

type Session struct {
	remote Remote
	cache  *cache.Cache
	log    *slog.Logger
	now    func() time.Time
}

func New(remote Remote, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		remote: remote,
		cache:  cache.New(cache.Options{Retry: opts.Retry, Logger: log, Now: now}),
		log:    log,
		now:    now,
	}
}

// Close drops every cached read.
func (s *Session) Close() {
	s.cache.Close()
}

// Cache exposes the per-key state for rendering.
func (s *Session) Cache() *cache.Cache { return s.cache }

// mutate runs write and invalidates keys only when it succeeds. Writes are
// never retried.
func (s *Session) mutate(ctx context.Context, op string, write func(context.Context) error, keys ...cache.Key) error {
	if err := write(ctx); err != nil {
		s.log.Warn("mutation failed", "op", op, "error", err)
		return err
	}
	s.cache.Invalidate(keys...)
	s.log.Info("mutation applied", "op", op)
	return nil
}

// warnShape logs and swallows a shape mismatch; any other error is returned.
func (s *Session) warnShape(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrShapeMismatch) {
		s.log.Warn("unexpected response shape", "op", op, "error", err)
		return nil
	}
	return err
}
