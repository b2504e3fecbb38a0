package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		changed  bool
		kind     ErrorKind
	}{
		{StatusPending, StatusConfirmed, true, ""},
		{StatusPending, StatusRejected, true, ""},
		{StatusPending, StatusPending, false, ""},
		{StatusConfirmed, StatusConfirmed, false, ""},
		{StatusConfirmed, StatusRejected, false, KindInvalidTransition},
		{StatusRejected, StatusConfirmed, false, KindInvalidTransition},
		{StatusConfirmed, StatusPending, false, KindInvalidTransition},
		{StatusRejected, StatusPending, false, KindInvalidTransition},
		{StatusPending, "CANCELLED", false, KindValidation},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			changed, err := CheckTransition(tc.from, tc.to)
			assert.Equal(t, tc.changed, changed)
			if tc.kind == "" {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseStatus("maybe")
	assert.ErrorIs(t, err, ErrValidation)

	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusPending.Terminal())
}

func TestBookingNights(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		end  time.Time
		want int64
	}{
		{start.Add(48 * time.Hour), 2},
		{start.Add(60 * time.Hour), 3},
		{start.Add(time.Minute), 1},
		{start, 0},
		{start.Add(-time.Hour), 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Booking{StartDate: start, EndDate: tc.end}.Nights(), tc.end)
	}
}

func validBooking() CreateBookingInput {
	return CreateBookingInput{
		VenueID:       "v1",
		CompanyName:   "Acme Corp",
		Email:         "events@acme.com",
		StartDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
		AttendeeCount: 20,
	}
}

func TestCreateBookingInput_Validate(t *testing.T) {
	require.NoError(t, validBooking().Validate(50))
	require.NoError(t, validBooking().Validate(0))

	cases := []struct {
		name   string
		mutate func(*CreateBookingInput)
		cap    int
		field  string
	}{
		{"start equals end", func(in *CreateBookingInput) { in.EndDate = in.StartDate }, 0, "endDate"},
		{"end before start", func(in *CreateBookingInput) { in.EndDate = in.StartDate.Add(-time.Hour) }, 0, "endDate"},
		{"missing start", func(in *CreateBookingInput) { in.StartDate = time.Time{} }, 0, "startDate"},
		{"no attendees", func(in *CreateBookingInput) { in.AttendeeCount = 0 }, 0, "attendeeCount"},
		{"over capacity", func(in *CreateBookingInput) { in.AttendeeCount = 51 }, 50, "attendeeCount"},
		{"bad email", func(in *CreateBookingInput) { in.Email = "nope" }, 0, "email"},
		{"missing company", func(in *CreateBookingInput) { in.CompanyName = "" }, 0, "companyName"},
		{"missing venue", func(in *CreateBookingInput) { in.VenueID = "" }, 0, "venueId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validBooking()
			tc.mutate(&in)
			err := in.Validate(tc.cap)
			require.ErrorIs(t, err, ErrValidation)
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestVenueInput_Validate(t *testing.T) {
	in := VenueInput{
		Name:          " Lakeside Lodge ",
		City:          "Lisbon",
		Capacity:      40,
		PricePerNight: 12000,
		Images:        []string{" https://img/1.jpg ", ""},
	}
	in.Normalize()
	require.NoError(t, in.Validate())
	assert.Equal(t, "Lakeside Lodge", in.Name)
	assert.Equal(t, []string{"https://img/1.jpg"}, in.Images)
	assert.Equal(t, []string{}, in.Amenities)

	err := VenueInput{}.Validate()
	var verr *Error
	require.ErrorAs(t, err, &verr)
	for _, f := range []string{"name", "city", "capacity", "pricePerNight", "images"} {
		assert.Contains(t, verr.Fields, f)
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := &Error{Kind: KindNotFound, Message: "venue v1 not found", Status: 404}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrServer)
	assert.Equal(t, "venue v1 not found", err.UserMessage())
	assert.Equal(t, "Server error. Please try again later.", (&Error{Kind: KindServer}).UserMessage())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 0, 12, 100, 25)
	assert.Equal(t, Pagination{Page: 1, Limit: 12, Total: 25, TotalPages: 3, HasNext: true}, p)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 500, 12, 100, 0)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 1, p.TotalPages)
	assert.True(t, p.HasPrev)
}
