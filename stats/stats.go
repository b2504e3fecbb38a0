// Package stats derives dashboard figures from booking collections.
//
// Every function here is pure: callers pass the collection and the clock
// reading, and cached aggregates go stale exactly when the collection they
// were computed from does.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

const (
	// AssumedNightsPerBooking and AnnualInventoryNights drive the occupancy
	// estimate. It is a display figure only and must not be used to detect
	// conflicting bookings.
	AssumedNightsPerBooking = 30
	AnnualInventoryNights   = 365 * 0.7
)

type BookingStats struct {
	Total         int     `json:"total" yaml:"total"`
	Confirmed     int     `json:"confirmed" yaml:"confirmed"`
	Pending       int     `json:"pending" yaml:"pending"`
	Rejected      int     `json:"rejected" yaml:"rejected"`
	Revenue       int64   `json:"revenue" yaml:"revenue"`
	OccupancyRate float64 `json:"occupancyRate" yaml:"occupancyRate"`
}

// Compute aggregates bookings for a single venue priced at nightlyPrice.
func Compute(bookings []models.Booking, nightlyPrice int64) BookingStats {
	return ComputeWith(bookings, func(models.Booking) int64 { return nightlyPrice })
}

// ComputeWith prices each confirmed booking with price, which lets a
// multi-venue collection be billed at each venue's own rate.
func ComputeWith(bookings []models.Booking, price func(models.Booking) int64) BookingStats {
	st := BookingStats{Total: len(bookings)}
	for _, b := range bookings {
		switch b.Status {
		case models.StatusConfirmed:
			st.Confirmed++
			st.Revenue += b.Nights() * price(b)
		case models.StatusRejected:
			st.Rejected++
		default:
			// unknown statuses are counted as pending so the three counts
			// always add up to Total
			st.Pending++
		}
	}
	st.OccupancyRate = OccupancyRate(st.Confirmed)
	return st
}

// OccupancyRate is a percentage scaled against an assumed annual inventory.
func OccupancyRate(confirmed int) float64 {
	return float64(confirmed*AssumedNightsPerBooking) / AnnualInventoryNights * 100
}

// SnapshotPrice prices a booking from its venue snapshot, falling back to fallback.
func SnapshotPrice(fallback int64) func(models.Booking) int64 {
	return func(b models.Booking) int64 {
		if b.Venue != nil && b.Venue.PricePerNight > 0 {
			return b.Venue.PricePerNight
		}
		return fallback
	}
}

type Partition struct {
	Upcoming []models.Booking `json:"upcoming" yaml:"upcoming"`
	Pending  []models.Booking `json:"pending" yaml:"pending"`
	Past     []models.Booking `json:"past" yaml:"past"`
}

// Split partitions bookings relative to now. Upcoming: confirmed and starting
// strictly after now. Pending: pending regardless of date. Past: confirmed or
// rejected and already ended. Confirmed bookings in progress and rejected ones
// that have not ended belong to none of the three.
func Split(bookings []models.Booking, now time.Time) Partition {
	p := Partition{
		Upcoming: []models.Booking{},
		Pending:  []models.Booking{},
		Past:     []models.Booking{},
	}
	for _, b := range bookings {
		switch {
		case b.Status == models.StatusPending:
			p.Pending = append(p.Pending, b)
		case b.Status == models.StatusConfirmed && b.StartDate.After(now):
			p.Upcoming = append(p.Upcoming, b)
		case (b.Status == models.StatusConfirmed || b.Status == models.StatusRejected) && !b.EndDate.After(now):
			p.Past = append(p.Past, b)
		}
	}
	return p
}

type VenueStats struct {
	TotalVenues   int      `json:"totalVenues" yaml:"totalVenues"`
	TotalCapacity int      `json:"totalCapacity" yaml:"totalCapacity"`
	AveragePrice  int64    `json:"averagePrice" yaml:"averagePrice"`
	PopularCities []string `json:"popularCities" yaml:"popularCities"`
}

const popularCityCount = 5

// Venues summarizes the catalog. AveragePrice is rounded down; cities are
// ranked by venue count, ties broken by name.
func Venues(venues []models.Venue) VenueStats {
	st := VenueStats{TotalVenues: len(venues), PopularCities: []string{}}
	if len(venues) == 0 {
		return st
	}
	var priceSum int64
	counts := map[string]int{}
	display := map[string]string{}
	for _, v := range venues {
		st.TotalCapacity += v.Capacity
		priceSum += v.PricePerNight
		key := strings.ToLower(strings.TrimSpace(v.City))
		if key == "" {
			continue
		}
		if _, ok := display[key]; !ok {
			display[key] = strings.TrimSpace(v.City)
		}
		counts[key]++
	}
	st.AveragePrice = priceSum / int64(len(venues))

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > popularCityCount {
		keys = keys[:popularCityCount]
	}
	for _, k := range keys {
		st.PopularCities = append(st.PopularCities, display[k])
	}
	return st
}
