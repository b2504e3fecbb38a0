package models

import (
	"net/url"
	"strconv"
	"time"
)

type VenueFilters struct {
	City        string `form:"city" json:"city,omitempty"`
	MinCapacity int    `form:"minCapacity" json:"minCapacity,omitempty"`
	MaxPrice    int64  `form:"maxPrice" json:"maxPrice,omitempty"`
	Page        int    `form:"page" json:"page,omitempty"`
	Limit       int    `form:"limit" json:"limit,omitempty"`
}

// Values drops unset parameters; Encode of the result is stable and doubles as
// the cache key parameter string.
func (f VenueFilters) Values() url.Values {
	v := url.Values{}
	setString(v, "city", f.City)
	setInt(v, "minCapacity", int64(f.MinCapacity))
	setInt(v, "maxPrice", f.MaxPrice)
	setInt(v, "page", int64(f.Page))
	setInt(v, "limit", int64(f.Limit))
	return v
}

type BookingFilters struct {
	Status      string    `form:"status" json:"status,omitempty"`
	VenueID     string    `form:"venueId" json:"venueId,omitempty"`
	CompanyName string    `form:"companyName" json:"companyName,omitempty"`
	Email       string    `form:"email" json:"email,omitempty"`
	StartDate   time.Time `form:"startDate" time_format:"2006-01-02T15:04:05Z07:00" json:"startDate,omitempty"`
	EndDate     time.Time `form:"endDate" time_format:"2006-01-02T15:04:05Z07:00" json:"endDate,omitempty"`
	Page        int       `form:"page" json:"page,omitempty"`
	Limit       int       `form:"limit" json:"limit,omitempty"`
}

func (f BookingFilters) Values() url.Values {
	v := url.Values{}
	setString(v, "status", f.Status)
	setString(v, "venueId", f.VenueID)
	setString(v, "companyName", f.CompanyName)
	setString(v, "email", f.Email)
	setTime(v, "startDate", f.StartDate)
	setTime(v, "endDate", f.EndDate)
	setInt(v, "page", int64(f.Page))
	setInt(v, "limit", int64(f.Limit))
	return v
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination clamps page and limit; limit falls back to def and is capped at max.
func NewPagination(page, limit, def, max int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		pages = 1
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
		HasPrev:    page > 1,
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func setString(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setInt(v url.Values, key string, val int64) {
	if val != 0 {
		v.Set(key, strconv.FormatInt(val, 10))
	}
}

func setTime(v url.Values, key string, t time.Time) {
	if !t.IsZero() {
		v.Set(key, t.UTC().Format(time.RFC3339))
	}
}
