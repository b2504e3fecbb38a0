package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "ValidationError"
	KindNotFound          ErrorKind = "NotFound"
	KindUnauthorized      ErrorKind = "Unauthorized"
	KindForbidden         ErrorKind = "Forbidden"
	KindServer            ErrorKind = "ServerError"
	KindNetwork           ErrorKind = "NetworkError"
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindShapeMismatch     ErrorKind = "ShapeMismatch"
	KindConflict          ErrorKind = "Conflict"
)

// Sentinels for errors.Is; any *Error of the same kind matches.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrServer            = &Error{Kind: KindServer}
	ErrNetwork           = &Error{Kind: KindNetwork}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrShapeMismatch     = &Error{Kind: KindShapeMismatch}
	ErrConflict          = &Error{Kind: KindConflict}
)

type Error struct {
	Kind    ErrorKind
	Message string
	// Fields holds field-level messages for validation errors.
	Fields map[string]string
	// Status is the HTTP status that produced or should carry the error, 0 if none.
	Status int
	Err    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(parts, "; "))
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// UserMessage is the single line shown to an operator.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindNotFound:
		return "Resource not found"
	case KindServer:
		return "Server error. Please try again later."
	case KindUnauthorized:
		return "Authentication required"
	case KindNetwork:
		return "Network error"
	}
	return "Something went wrong"
}

func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
