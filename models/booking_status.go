package models

import (
	"fmt"
	"strings"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusRejected  BookingStatus = "REJECTED"
)

var allowedTransitions = map[BookingStatus]map[BookingStatus]bool{
	StatusPending:   {StatusConfirmed: true, StatusRejected: true},
	StatusConfirmed: {},
	StatusRejected:  {},
}

// ParseStatus accepts any letter case.
func ParseStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := allowedTransitions[status]; !ok {
		return "", NewValidationError("unknown booking status", map[string]string{
			"status": fmt.Sprintf("must be one of %s, %s, %s", StatusPending, StatusConfirmed, StatusRejected),
		})
	}
	return status, nil
}

func (s BookingStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s BookingStatus) Terminal() bool {
	return s.Valid() && len(allowedTransitions[s]) == 0
}

func CanTransition(from, to BookingStatus) bool {
	return allowedTransitions[from][to]
}

// CheckTransition decides what applying target to a booking currently in from
// means. changed is false for a same-state request, which callers must treat as
// a no-op and not forward to the backend.
func CheckTransition(from, target BookingStatus) (changed bool, err error) {
	if !target.Valid() {
		return false, NewValidationError("unknown booking status", map[string]string{"status": string(target)})
	}
	if from == target {
		return false, nil
	}
	if !CanTransition(from, target) {
		return false, &Error{
			Kind:    KindInvalidTransition,
			Message: fmt.Sprintf("cannot change booking status from %s to %s", from, target),
		}
	}
	return true, nil
}
