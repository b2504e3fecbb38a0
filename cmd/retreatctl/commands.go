package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/Hasan-Al-Banna-Nahid/retreat/filter"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

const dateLayout = "2006-01-02"

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"login", "exchange credentials for a token and save it", runLogin},
	{"venues", "list the venue catalog", runVenues},
	{"bookings", "list bookings, optionally filtered by status and search text", runBookings},
	{"booking", "show one booking", runBooking},
	{"overview", "upcoming, pending and past bookings of a venue", runOverview},
	{"stats", "booking counts, revenue and occupancy", runStats},
	{"book", "request a booking", runBook},
	{"approve", "confirm a pending booking", runApprove},
	{"reject", "reject a pending booking", runReject},
	{"delete-booking", "remove a booking record", runDeleteBooking},
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func newFlags(a *app, name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// oneID parses fs and returns its single positional argument.
func oneID(fs *pflag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one booking ID, got %d argument(s)", fs.Name(), fs.NArg())
	}
	return fs.Arg(0), nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "login")
	username := fs.StringP("username", "u", os.Getenv("RETREAT_USERNAME"), "account username (RETREAT_USERNAME)")
	password := fs.StringP("password", "p", os.Getenv("RETREAT_PASSWORD"), "account password (RETREAT_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return models.NewValidationError("username and password are required", nil)
	}
	if _, err := a.client.Login(ctx, *username, *password); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "logged in as %s\n", *username)
	return nil
}

func runVenues(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "venues")
	var f models.VenueFilters
	fs.StringVar(&f.City, "city", "", "city substring")
	fs.IntVar(&f.MinCapacity, "min-capacity", 0, "minimum capacity")
	fs.Int64Var(&f.MaxPrice, "max-price", 0, "maximum nightly price in minor units")
	fs.IntVar(&f.Page, "page", 0, "page number")
	fs.IntVar(&f.Limit, "limit", 0, "page size")
	summary := fs.Bool("summary", false, "print catalog totals instead of the list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *summary {
		vs, err := a.session.VenueSummary(ctx, f)
		if err != nil {
			return err
		}
		return a.out.venueSummary(vs)
	}
	page, err := a.session.Venues(ctx, f)
	if err != nil {
		return err
	}
	return a.out.venues(page.Venues)
}

func runBookings(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "bookings")
	var f models.BookingFilters
	var crit filter.Criteria
	fs.StringVar(&crit.Status, "status", filter.All, "PENDING, CONFIRMED, REJECTED or ALL")
	fs.StringVar(&crit.Text, "search", "", "match company, email or venue name")
	fs.StringVar(&f.VenueID, "venue", "", "only bookings of this venue")
	fs.IntVar(&f.Page, "page", 0, "page number")
	fs.IntVar(&f.Limit, "limit", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	page, err := a.session.Bookings(ctx, f)
	if err != nil {
		return err
	}
	return a.out.bookings(filter.Apply(page.Bookings, crit))
}

func runBooking(ctx context.Context, a *app, args []string) error {
	id, err := oneID(newFlags(a, "booking"), args)
	if err != nil {
		return err
	}
	b, err := a.session.Booking(ctx, id)
	if err != nil {
		return err
	}
	return a.out.booking(b)
}

func runOverview(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "overview")
	venueID := fs.String("venue", "", "venue ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *venueID == "" {
		return models.NewValidationError("--venue is required", map[string]string{"venue": "is required"})
	}
	part, err := a.session.Overview(ctx, *venueID)
	if err != nil {
		return err
	}
	return a.out.overview(part)
}

func runStats(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "stats")
	venueID := fs.String("venue", "", "venue ID; every booking when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := a.session.BookingStats(ctx, *venueID)
	if err != nil {
		return err
	}
	return a.out.stats(st)
}

func runBook(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "book")
	var in models.CreateBookingInput
	var start, end string
	fs.StringVar(&in.VenueID, "venue", "", "venue ID")
	fs.StringVar(&in.CompanyName, "company", "", "company name")
	fs.StringVar(&in.Email, "email", "", "contact email")
	fs.StringVar(&start, "start", "", "start date, YYYY-MM-DD or RFC 3339")
	fs.StringVar(&end, "end", "", "end date, YYYY-MM-DD or RFC 3339")
	fs.IntVar(&in.AttendeeCount, "attendees", 0, "number of attendees")
	fs.StringVar(&in.SpecialRequests, "requests", "", "special requests")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fields := map[string]string{}
	var err error
	if in.StartDate, err = parseDate(start); err != nil {
		fields["startDate"] = err.Error()
	}
	if in.EndDate, err = parseDate(end); err != nil {
		fields["endDate"] = err.Error()
	}
	if len(fields) > 0 {
		return models.NewValidationError("invalid booking request", fields)
	}

	b, err := a.session.CreateBooking(ctx, in)
	if err != nil {
		return err
	}
	return a.out.booking(b)
}

func runApprove(ctx context.Context, a *app, args []string) error {
	return runStatus(ctx, a, "approve", models.StatusConfirmed, args)
}

func runReject(ctx context.Context, a *app, args []string) error {
	return runStatus(ctx, a, "reject", models.StatusRejected, args)
}

func runStatus(ctx context.Context, a *app, name string, target models.BookingStatus, args []string) error {
	id, err := oneID(newFlags(a, name), args)
	if err != nil {
		return err
	}
	b, changed, err := a.session.UpdateBookingStatus(ctx, id, target)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintf(a.stderr, "booking %s is already %s\n", id, b.Status)
	}
	return a.out.booking(b)
}

func runDeleteBooking(ctx context.Context, a *app, args []string) error {
	id, err := oneID(newFlags(a, "delete-booking"), args)
	if err != nil {
		return err
	}
	if err := a.session.DeleteBooking(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "booking %s deleted\n", id)
	return nil
}

// parseDate accepts a calendar date (midnight UTC) or a full RFC 3339 time.
// An empty value is left zero for validation to report.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD or RFC 3339, got %q", s)
	}
	return t.UTC(), nil
}
