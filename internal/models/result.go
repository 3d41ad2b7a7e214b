package models

import "time"

// BookingStatus discriminates the outcome of a booking attempt.
type BookingStatus string

const (
	BookingBooked      BookingStatus = "booked"
	BookingConflict    BookingStatus = "conflict"
	BookingInvalidTime BookingStatus = "invalid_time"
	BookingFailed      BookingStatus = "failed"
)

// BookingResult is the terminal outcome of one booking attempt.
type BookingResult struct {
	Status BookingStatus

	// BookingBooked only.
	Confirmation string
	MeetLink     string
	Start        time.Time
	End          time.Time

	// BookingConflict only.
	Conflict *ConflictDetails

	// BookingInvalidTime and BookingFailed.
	Reason string
}
