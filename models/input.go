package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

type CreateBookingInput struct {
	VenueID         string    `json:"venueId" validate:"required"`
	CompanyName     string    `json:"companyName" validate:"required"`
	Email           string    `json:"email" validate:"required,email"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	AttendeeCount   int       `json:"attendeeCount" validate:"min=1"`
	SpecialRequests string    `json:"specialRequests,omitempty"`
}

// Normalize trims free text and moves the dates to UTC.
func (in *CreateBookingInput) Normalize() {
	in.VenueID = strings.TrimSpace(in.VenueID)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Email = strings.TrimSpace(in.Email)
	in.SpecialRequests = strings.TrimSpace(in.SpecialRequests)
	in.StartDate = in.StartDate.UTC()
	in.EndDate = in.EndDate.UTC()
}

// Validate checks the request before anything is sent or stored. capacity is
// the selected venue's capacity; pass 0 when it is not known.
func (in CreateBookingInput) Validate(capacity int) error {
	fields := structFieldErrors(in)
	if in.StartDate.IsZero() {
		fields["startDate"] = "start date is required"
	}
	if in.EndDate.IsZero() {
		fields["endDate"] = "end date is required"
	}
	if _, bad := fields["startDate"]; !bad && !in.EndDate.IsZero() && !in.StartDate.Before(in.EndDate) {
		fields["endDate"] = "end date must be after start date"
	}
	if capacity > 0 && in.AttendeeCount > capacity {
		fields["attendeeCount"] = fmt.Sprintf("must not exceed venue capacity of %d", capacity)
	}
	if len(fields) > 0 {
		return NewValidationError("invalid booking request", fields)
	}
	return nil
}

type VenueInput struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description,omitempty"`
	City          string   `json:"city" validate:"required"`
	Capacity      int      `json:"capacity" validate:"min=1"`
	PricePerNight int64    `json:"pricePerNight" validate:"min=1"`
	Images        []string `json:"images" validate:"min=1,dive,required"`
	Amenities     []string `json:"amenities"`
}

func (in *VenueInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.City = strings.TrimSpace(in.City)
	in.Description = strings.TrimSpace(in.Description)
	in.Images = compact(in.Images)
	in.Amenities = compact(in.Amenities)
}

func (in VenueInput) Validate() error {
	fields := structFieldErrors(in)
	if len(fields) > 0 {
		return NewValidationError("invalid venue", fields)
	}
	return nil
}

// Apply copies the input onto v, leaving identity and timestamps alone.
func (in VenueInput) Apply(v *Venue) {
	v.Name = in.Name
	v.Description = in.Description
	v.City = in.City
	v.Capacity = in.Capacity
	v.PricePerNight = in.PricePerNight
	v.Images = append(v.Images[:0:0], in.Images...)
	v.Amenities = append(v.Amenities[:0:0], in.Amenities...)
	if v.Amenities == nil {
		v.Amenities = []string{}
	}
}

type StatusInput struct {
	Status BookingStatus `json:"status"`
}

func structFieldErrors(s any) map[string]string {
	fields := map[string]string{}
	err := validate.Struct(s)
	if err == nil {
		return fields
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		name := fe.Field()
		// images[0] -> images
		if i := strings.IndexByte(name, '['); i > 0 {
			name = name[:i]
		}
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
