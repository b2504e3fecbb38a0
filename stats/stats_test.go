package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func booking(status models.BookingStatus, start, end string) models.Booking {
	return models.Booking{Status: status, StartDate: at(start), EndDate: at(end)}
}

func TestCompute_RevenueRoundsPartialNightsUp(t *testing.T) {
	st := Compute([]models.Booking{
		booking(models.StatusConfirmed, "2024-01-01T00:00:00Z", "2024-01-03T12:00:00Z"),
	}, 10000)

	assert.Equal(t, int64(30000), st.Revenue)
	assert.Equal(t, 1, st.Confirmed)
}

func TestCompute_OnlyConfirmedEarn(t *testing.T) {
	st := Compute([]models.Booking{
		booking(models.StatusConfirmed, "2024-03-01T00:00:00Z", "2024-03-03T00:00:00Z"),
		booking(models.StatusPending, "2024-03-01T00:00:00Z", "2024-03-10T00:00:00Z"),
		booking(models.StatusRejected, "2024-03-01T00:00:00Z", "2024-03-10T00:00:00Z"),
	}, 5000)

	assert.Equal(t, int64(10000), st.Revenue)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, 1, st.Rejected)
}

func TestCompute_CountsSumToTotal(t *testing.T) {
	statuses := []models.BookingStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusRejected, "ARCHIVED", "",
	}
	for n := 0; n < 40; n++ {
		var bookings []models.Booking
		for i := 0; i < n; i++ {
			bookings = append(bookings, booking(statuses[(i*7+n)%len(statuses)], "2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z"))
		}
		st := Compute(bookings, 100)
		require.Equal(t, st.Total, st.Confirmed+st.Pending+st.Rejected, "n=%d", n)
		require.Equal(t, n, st.Total)
	}
}

func TestCompute_Empty(t *testing.T) {
	st := Compute(nil, 10000)
	assert.Equal(t, BookingStats{}, st)
}

func TestOccupancyRate(t *testing.T) {
	assert.InDelta(t, 11.741682974559687, OccupancyRate(1), 1e-9)
	assert.Equal(t, 0.0, OccupancyRate(0))
}

func TestComputeWith_SnapshotPrice(t *testing.T) {
	b1 := booking(models.StatusConfirmed, "2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z")
	b1.Venue = &models.VenueSnapshot{PricePerNight: 7000}
	b2 := booking(models.StatusConfirmed, "2024-01-01T00:00:00Z", "2024-01-03T00:00:00Z")

	st := ComputeWith([]models.Booking{b1, b2}, SnapshotPrice(1000))
	assert.Equal(t, int64(7000+2*1000), st.Revenue)
}

func TestSplit(t *testing.T) {
	now := at("2024-06-15T12:00:00Z")
	future := booking(models.StatusConfirmed, "2024-07-01T00:00:00Z", "2024-07-03T00:00:00Z")
	running := booking(models.StatusConfirmed, "2024-06-14T00:00:00Z", "2024-06-16T00:00:00Z")
	done := booking(models.StatusConfirmed, "2024-05-01T00:00:00Z", "2024-05-03T00:00:00Z")
	rejectedPast := booking(models.StatusRejected, "2024-05-01T00:00:00Z", "2024-05-03T00:00:00Z")
	pendingPast := booking(models.StatusPending, "2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z")

	p := Split([]models.Booking{future, running, done, rejectedPast, pendingPast}, now)

	assert.Equal(t, []models.Booking{future}, p.Upcoming)
	assert.Equal(t, []models.Booking{pendingPast}, p.Pending)
	assert.Equal(t, []models.Booking{done, rejectedPast}, p.Past)
}

func TestVenues(t *testing.T) {
	st := Venues([]models.Venue{
		{City: "Lisbon", Capacity: 40, PricePerNight: 10000},
		{City: "lisbon ", Capacity: 10, PricePerNight: 20000},
		{City: "Porto", Capacity: 25, PricePerNight: 15001},
		{City: "Braga", Capacity: 5, PricePerNight: 1},
	})

	assert.Equal(t, 4, st.TotalVenues)
	assert.Equal(t, 80, st.TotalCapacity)
	assert.Equal(t, int64(11250), st.AveragePrice)
	assert.Equal(t, []string{"Lisbon", "Braga", "Porto"}, st.PopularCities)

	assert.Equal(t, VenueStats{PopularCities: []string{}}, Venues(nil))
}
