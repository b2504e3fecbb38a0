package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

func TestMatches(t *testing.T) {
	acme := models.Booking{CompanyName: "Acme Corp", Email: "x@acme.com", Status: models.StatusPending}
	withVenue := models.Booking{
		CompanyName: "Globex",
		Email:       "ops@globex.io",
		Status:      models.StatusConfirmed,
		Venue:       &models.VenueSnapshot{Name: "Lakeside Lodge"},
	}

	cases := []struct {
		name string
		b    models.Booking
		c    Criteria
		want bool
	}{
		{"token with ALL", acme, Criteria{Text: "acme", Status: All}, true},
		{"token with other status", acme, Criteria{Text: "acme", Status: "CONFIRMED"}, false},
		{"empty token", acme, Criteria{Status: All}, true},
		{"empty status means all", acme, Criteria{Text: "ACME"}, true},
		{"lowercase status filter", acme, Criteria{Status: "pending"}, true},
		{"email only", acme, Criteria{Text: "x@"}, true},
		{"venue name", withVenue, Criteria{Text: "lakeside"}, true},
		{"no venue snapshot", acme, Criteria{Text: "lodge"}, false},
		{"no match", withVenue, Criteria{Text: "initech"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(tc.b, tc.c))
		})
	}
}

func TestApply_KeepsOrder(t *testing.T) {
	in := []models.Booking{
		{ID: "1", CompanyName: "Acme", Status: models.StatusPending},
		{ID: "2", CompanyName: "Globex", Status: models.StatusPending},
		{ID: "3", CompanyName: "Acme Travel", Status: models.StatusRejected},
	}
	out := Apply(in, Criteria{Text: "acme", Status: All})
	assert.Equal(t, []string{"1", "3"}, []string{out[0].ID, out[1].ID})
	assert.Empty(t, Apply(nil, Criteria{}))
}
