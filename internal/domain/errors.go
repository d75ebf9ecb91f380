package domain

import (
	"errors"
	"strings"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrAdsPermissionDenied = errors.New("permission to manipulate ads denied")
	ErrInvalidID           = errors.New("invalid id")
	// ErrEventChanged means the stored category no longer matches the one the
	// caller was authorized against.
	ErrEventChanged        = errors.New("event was modified concurrently")
)

// ErrIDMismatch is returned when an update body targets a different event than the path.
var ErrIDMismatch = &ValidationError{
	Violations: []Violation{{Field: "id", Message: "The event ID does not match the ID in the request."}},
}

// Violation describes a single failed field constraint.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + " " + v.Message
}

// ValidationError aggregates every constraint a candidate event violates.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}
	return "invalid event: " + strings.Join(msgs, ", ")
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
