// Package filter implements the local booking search used by the booking
// manager. Matching never touches the network; debouncing keystrokes is left
// to the caller.
package filter

import (
	"strings"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

// All disables status filtering.
const All = "ALL"

type Criteria struct {
	Text   string
	Status string // All, "" or a booking status
}

// Matches reports whether b satisfies c. Text is a case-insensitive substring
// of the company name, email or venue name; an empty Text matches everything.
func Matches(b models.Booking, c Criteria) bool {
	status := strings.ToUpper(strings.TrimSpace(c.Status))
	if status != "" && status != All && string(b.Status) != status {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(c.Text))
	if text == "" {
		return true
	}
	for _, field := range []string{b.CompanyName, b.Email, b.VenueName()} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

// Apply keeps the matching bookings in their original order.
func Apply(bookings []models.Booking, c Criteria) []models.Booking {
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if Matches(b, c) {
			out = append(out, b)
		}
	}
	return out
}
