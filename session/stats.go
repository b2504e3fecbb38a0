package session

import (
	"context"

	"github.com/Hasan-Al-Banna-Nahid/retreat/cache"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
	"github.com/Hasan-Al-Banna-Nahid/retreat/stats"
)

// statsPageLimit is the page size used when aggregating over every booking.
const statsPageLimit = 100

// BookingStats aggregates the bookings of one venue at its nightly price, or of
// every booking priced from its own venue snapshot when venueID is empty. The
// result is cached and dropped by any booking mutation.
func (s *Session) BookingStats(ctx context.Context, venueID string) (stats.BookingStats, error) {
	v, _, err := cache.Get(ctx, s.cache, cache.NewKey(ResourceBookingStats, venueID), func(ctx context.Context) (stats.BookingStats, error) {
		if venueID == "" {
			all, err := s.allBookings(ctx)
			if err != nil {
				return stats.BookingStats{}, err
			}
			return stats.ComputeWith(all, stats.SnapshotPrice(0)), nil
		}
		venue, err := s.Venue(ctx, venueID)
		if err != nil {
			return stats.BookingStats{}, err
		}
		bookings, err := s.VenueBookings(ctx, venueID)
		if err != nil {
			return stats.BookingStats{}, err
		}
		return stats.Compute(bookings, venue.PricePerNight), nil
	})
	return v, err
}

// Overview partitions a venue's bookings into upcoming, pending and past.
func (s *Session) Overview(ctx context.Context, venueID string) (stats.Partition, error) {
	bookings, err := s.VenueBookings(ctx, venueID)
	if err != nil && bookings == nil {
		return stats.Partition{}, err
	}
	return stats.Split(bookings, s.now()), err
}

// VenueSummary summarizes the first page of the catalog matching f.
func (s *Session) VenueSummary(ctx context.Context, f models.VenueFilters) (stats.VenueStats, error) {
	page, err := s.Venues(ctx, f)
	if err != nil && page.Venues == nil {
		return stats.VenueStats{}, err
	}
	return stats.Venues(page.Venues), err
}

func (s *Session) allBookings(ctx context.Context) ([]models.Booking, error) {
	var all []models.Booking
	for p := 1; ; p++ {
		page, err := s.Bookings(ctx, models.BookingFilters{Page: p, Limit: statsPageLimit})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Bookings...)
		if !page.Paginated || !page.Pagination.HasNext || len(page.Bookings) == 0 {
			return all, nil
		}
	}
}
