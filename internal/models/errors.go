package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for failures that carry no extra state.
var (
	// ErrMalformedIntent indicates the language model returned something that
	// could not be parsed as the expected JSON object.
	ErrMalformedIntent = errors.New("language model returned malformed intent")

	// ErrInvalidTimeFormat indicates a time string that could not be
	// normalized to HH:MM.
	ErrInvalidTimeFormat = errors.New("invalid time format: use formats like '2pm', '2:00pm', '2:00 PM', or '14:00'")
)

// InvalidDateError reports an unparseable date with the remediation hint for
// out-of-year dates.
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("couldn't understand the date %q: for dates outside the current year, use MM/DD/YYYY", e.Input)
}

// AmbiguousAttendeeError is returned when more than one plausible contact
// matched a name. It is a required pause, not a failure: the caller must
// present Candidates for human disambiguation.
type AmbiguousAttendeeError struct {
	Name       string
	Candidates []ContactCandidate
}

func (e *AmbiguousAttendeeError) Error() string {
	return fmt.Sprintf("multiple contacts found for %q (%d candidates), selection required", e.Name, len(e.Candidates))
}

// AttendeeNotFoundError is returned when no source produced a candidate for a
// name. The caller must ask the user for an email directly; a fabricated
// placeholder address is never an acceptable substitute.
type AttendeeNotFoundError struct {
	Name string
}

func (e *AttendeeNotFoundError) Error() string {
	return fmt.Sprintf("no contact found for %q, an email address is required", e.Name)
}

// ExternalServiceError wraps any fault from the directory, calendar, or
// language service. It is terminal for the current request; nothing is
// retried internally.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
