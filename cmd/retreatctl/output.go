package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
	"github.com/Hasan-Al-Banna-Nahid/retreat/stats"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	statusStyles = map[models.BookingStatus]lipgloss.Style{
		models.StatusPending:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		models.StatusConfirmed: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		models.StatusRejected:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (printer, error) {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return printer{w: w, format: format}, nil
	}
	return printer{}, fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// emit writes v as JSON or YAML, or renders the table built by tbl.
func (p printer) emit(v any, tbl func() *table.Table) error {
	switch p.format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(p.w, string(data))
		return err
	case formatYAML:
		data, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = p.w.Write(data)
		return err
	}
	_, err := fmt.Fprintln(p.w, tbl().String())
	return err
}

// toYAML goes through JSON so YAML keys match the wire names. Numbers are
// decoded as json.Number and turned back into int64 where they fit, so large
// amounts are not printed in exponent form.
func toYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(plainNumbers(generic))
	if err != nil {
		return nil, fmt.Errorf("marshal YAML: %w", err)
	}
	return data, nil
}

// plainNumbers replaces every json.Number in v with an int64, or a float64
// when it has a fraction or exponent.
func plainNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = plainNumbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = plainNumbers(e)
		}
	}
	return v
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func (p printer) venues(venues []models.Venue) error {
	if venues == nil {
		venues = []models.Venue{}
	}
	return p.emit(venues, func() *table.Table {
		t := newTable("ID", "NAME", "CITY", "CAPACITY", "PRICE/NIGHT")
		for _, v := range venues {
			t.Row(v.ID, v.Name, v.City, strconv.Itoa(v.Capacity), money(v.PricePerNight))
		}
		return t
	})
}

func (p printer) bookings(bookings []models.Booking) error {
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return p.emit(bookings, func() *table.Table {
		t := newTable("ID", "COMPANY", "VENUE", "DATES", "ATTENDEES", "STATUS")
		for _, b := range bookings {
			t.Row(b.ID, b.CompanyName, b.VenueName(), dateRange(b), strconv.Itoa(b.AttendeeCount), status(b.Status))
		}
		return t
	})
}

func (p printer) booking(b models.Booking) error {
	return p.emit(b, func() *table.Table {
		return keyValues(
			"ID", b.ID,
			"Company", b.CompanyName,
			"Email", b.Email,
			"Venue", b.VenueName(),
			"Dates", dateRange(b),
			"Nights", strconv.FormatInt(b.Nights(), 10),
			"Attendees", strconv.Itoa(b.AttendeeCount),
			"Status", status(b.Status),
		)
	})
}

func (p printer) stats(st stats.BookingStats) error {
	return p.emit(st, func() *table.Table {
		return keyValues(
			"Total", strconv.Itoa(st.Total),
			"Confirmed", strconv.Itoa(st.Confirmed),
			"Pending", strconv.Itoa(st.Pending),
			"Rejected", strconv.Itoa(st.Rejected),
			"Revenue", money(st.Revenue),
			"Occupancy", strconv.FormatFloat(st.OccupancyRate, 'f', 1, 64)+"%",
		)
	})
}

func (p printer) venueSummary(vs stats.VenueStats) error {
	return p.emit(vs, func() *table.Table {
		return keyValues(
			"Venues", strconv.Itoa(vs.TotalVenues),
			"Capacity", strconv.Itoa(vs.TotalCapacity),
			"Average price", money(vs.AveragePrice),
			"Popular cities", strings.Join(vs.PopularCities, ", "),
		)
	})
}

func (p printer) overview(part stats.Partition) error {
	return p.emit(part, func() *table.Table {
		t := newTable("GROUP", "ID", "COMPANY", "DATES", "STATUS")
		groups := []struct {
			name     string
			bookings []models.Booking
		}{
			{"upcoming", part.Upcoming},
			{"pending", part.Pending},
			{"past", part.Past},
		}
		for _, g := range groups {
			for _, b := range g.bookings {
				t.Row(g.name, b.ID, b.CompanyName, dateRange(b), status(b.Status))
			}
		}
		return t
	})
}

// keyValues builds a two column table from alternating labels and values.
func keyValues(pairs ...string) *table.Table {
	t := newTable("FIELD", "VALUE")
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Row(pairs[i], pairs[i+1])
	}
	return t
}

func status(s models.BookingStatus) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

func dateRange(b models.Booking) string {
	return b.StartDate.UTC().Format(dateLayout) + " → " + b.EndDate.UTC().Format(dateLayout)
}

// money renders minor currency units with two decimals.
func money(minor int64) string {
	sign := ""
	if minor < 0 {
		sign, minor = "-", -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
