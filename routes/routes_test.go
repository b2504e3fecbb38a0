package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasan-Al-Banna-Nahid/retreat/auth"
	"github.com/Hasan-Al-Banna-Nahid/retreat/cache"
	"github.com/Hasan-Al-Banna-Nahid/retreat/client"
	"github.com/Hasan-Al-Banna-Nahid/retreat/config"
	"github.com/Hasan-Al-Banna-Nahid/retreat/controllers"
	"github.com/Hasan-Al-Banna-Nahid/retreat/events"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
	"github.com/Hasan-Al-Banna-Nahid/retreat/services"
	"github.com/Hasan-Al-Banna-Nahid/retreat/session"
)

const (
	approverUser = "admin@retreat.local"
	approverPass = "admin123"
	viewerUser   = "viewer@retreat.local"
	viewerPass   = "viewer123"
)

type testAPI struct {
	srv      *httptest.Server
	requests map[string]*int32
	events   *events.Recorder
}

// count returns how many requests hit "METHOD /path-prefix".
func (a *testAPI) count(key string) int32 {
	if n, ok := a.requests[key]; ok {
		return atomic.LoadInt32(n)
	}
	return 0
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Server{
		DBDriver:      "sqlite",
		SQLitePath:    ":memory:",
		DBLogLevel:    "silent",
		AdminUsername: approverUser,
		AdminPassword: approverPass,
	}
	db, err := config.ConnectDatabase(context.Background(), cfg)
	require.NoError(t, err)

	rec := &events.Recorder{}
	admins := services.NewAdminService(db)
	_, err = admins.Create(context.Background(), "Viewer", viewerUser, viewerPass, models.RoleViewer)
	require.NoError(t, err)
	issuer := auth.NewIssuer("test-secret", time.Hour)

	router := SetupRouter(Deps{
		Venues:   controllers.NewVenueController(services.NewVenueService(db, nil)),
		Bookings: controllers.NewBookingController(services.NewBookingService(db, rec, nil)),
		Auth:     controllers.NewAuthController(admins, issuer),
		Admins:   controllers.NewAdminController(admins),
		Issuer:   issuer,
	})

	api := &testAPI{requests: map[string]*int32{}, events: rec}
	for _, k := range []string{"GET /api/bookings/", "PUT /api/bookings/", "POST /api/bookings", "GET /api/venues/"} {
		api.requests[k] = new(int32)
	}
	api.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, n := range api.requests {
			method, prefix, _ := strings.Cut(k, " ")
			if r.Method == method && strings.HasPrefix(r.URL.Path, prefix) {
				atomic.AddInt32(n, 1)
			}
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *testAPI) login(t *testing.T, user, pass string) *client.Client {
	t.Helper()
	c, err := client.New(a.srv.URL + "/api")
	require.NoError(t, err)
	_, err = c.Login(context.Background(), user, pass)
	require.NoError(t, err)
	return c
}

func newSession(t *testing.T, c *client.Client) *session.Session {
	t.Helper()
	s := session.New(c, session.Options{Retry: cache.RetryPolicy{Attempts: 1, Delay: time.Millisecond}})
	t.Cleanup(s.Close)
	return s
}

func seedVenue(t *testing.T, s *session.Session) models.Venue {
	t.Helper()
	v, err := s.CreateVenue(context.Background(), models.VenueInput{
		Name:          "Lakeside Lodge",
		City:          "Lisbon",
		Capacity:      50,
		PricePerNight: 10000,
		Images:        []string{"https://img.example/lodge.jpg"},
	})
	require.NoError(t, err)
	return v
}

func bookingFor(venueID string) models.CreateBookingInput {
	return models.CreateBookingInput{
		VenueID:       venueID,
		CompanyName:   "Acme Corp",
		Email:         "x@acme.com",
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
		AttendeeCount: 12,
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	resp, err := http.Get(api.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBookingLifecycle(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	s := newSession(t, api.login(t, approverUser, approverPass))

	venue := seedVenue(t, s)
	assert.NotEmpty(t, venue.ID)

	booking, err := s.CreateBooking(ctx, bookingFor(venue.ID))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, "Lakeside Lodge", booking.VenueName())

	page, err := s.Bookings(ctx, models.BookingFilters{})
	require.NoError(t, err)
	require.Len(t, page.Bookings, 1)
	assert.True(t, page.Paginated)
	assert.Equal(t, int64(1), page.Pagination.Total)

	confirmed, changed, err := s.Confirm(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	_, changed, err = s.Confirm(ctx, booking.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int32(1), api.count("PUT /api/bookings/"))

	_, _, err = s.Reject(ctx, booking.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	stored, err := s.Booking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)

	st, err := s.BookingStats(ctx, venue.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, 1, st.Confirmed)
	assert.Equal(t, int64(30000), st.Revenue)

	err = s.DeleteVenue(ctx, venue.ID)
	require.ErrorIs(t, err, models.ErrConflict)

	require.NoError(t, s.DeleteBooking(ctx, booking.ID))
	list, err := s.VenueBookings(ctx, venue.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, s.DeleteVenue(ctx, venue.ID))

	assert.Equal(t, []string{events.BookingCreated, events.BookingConfirmed, events.BookingDeleted}, api.events.Types())
}

func TestCreateBooking_InvalidDatesSendNothing(t *testing.T) {
	api := newTestAPI(t)
	s := newSession(t, api.login(t, approverUser, approverPass))
	venue := seedVenue(t, s)
	before := api.count("GET /api/venues/")

	in := bookingFor(venue.ID)
	in.StartDate = in.EndDate
	_, err := s.CreateBooking(context.Background(), in)

	require.ErrorIs(t, err, models.ErrValidation)
	assert.Zero(t, api.count("POST /api/bookings"))
	assert.Equal(t, before, api.count("GET /api/venues/"))
}

func TestFreshReadsAreServedFromCache(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	s := newSession(t, api.login(t, approverUser, approverPass))
	venue := seedVenue(t, s)
	_, err := s.CreateBooking(ctx, bookingFor(venue.ID))
	require.NoError(t, err)

	_, err = s.VenueBookings(ctx, venue.ID)
	require.NoError(t, err)
	before := api.count("GET /api/bookings/")
	list, err := s.VenueBookings(ctx, venue.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, before, api.count("GET /api/bookings/"))
}

func TestRoleGate(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	approver := newSession(t, api.login(t, approverUser, approverPass))
	venue := seedVenue(t, approver)

	viewer := newSession(t, api.login(t, viewerUser, viewerPass))
	booking, err := viewer.CreateBooking(ctx, bookingFor(venue.ID))
	require.NoError(t, err)

	_, _, err = viewer.Confirm(ctx, booking.ID)
	require.ErrorIs(t, err, models.ErrForbidden)

	_, err = viewer.CreateVenue(ctx, models.VenueInput{Name: "X", City: "Y", Capacity: 1, PricePerNight: 1, Images: []string{"i"}})
	require.ErrorIs(t, err, models.ErrForbidden)
}

func TestUnauthorizedClearsToken(t *testing.T) {
	api := newTestAPI(t)
	tokens := client.NewMemoryTokens("not-a-jwt")
	var fired int32
	c, err := client.New(api.srv.URL+"/api", client.WithTokenStore(tokens), client.OnUnauthorized(func() { atomic.AddInt32(&fired, 1) }))
	require.NoError(t, err)

	_, err = c.ListVenues(context.Background(), models.VenueFilters{})
	require.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Empty(t, tokens.Token())
	assert.Equal(t, int32(1), fired)

	_, err = c.Login(context.Background(), approverUser, "wrong")
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestServerValidationEnvelope(t *testing.T) {
	api := newTestAPI(t)
	c := api.login(t, approverUser, approverPass)

	_, err := c.CreateVenue(context.Background(), models.VenueInput{Name: "No images"})
	var apiErr *models.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, models.KindValidation, apiErr.Kind)
	assert.Contains(t, apiErr.Fields, "images")
	assert.Contains(t, apiErr.Fields, "city")

	_, err = c.GetBooking(context.Background(), "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestListEnvelopeShape(t *testing.T) {
	api := newTestAPI(t)
	c := api.login(t, approverUser, approverPass)
	seedVenue(t, newSession(t, c))

	req, err := http.NewRequest(http.MethodGet, api.srv.URL+"/api/venues?city=lis&limit=5", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+c.Tokens().Token())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Data       []models.Venue    `json:"data"`
			Pagination models.Pagination `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data.Data, 1)
	assert.Equal(t, 5, body.Data.Pagination.Limit)
}
