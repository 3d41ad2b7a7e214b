package models

import "time"

// EventAttendee is an attendee entry on an external event.
type EventAttendee struct {
	Name  string
	Email string
	Self  bool
}

// SourceEvent is a raw event as returned by a calendar provider, before any
// display rendering. All-day events carry Date only and a zero Start.
type SourceEvent struct {
	ID        string
	Summary   string
	Start     time.Time
	AllDay    bool
	Date      string // YYYY-MM-DD, all-day events only
	Attendees []EventAttendee
	MeetLink  string
}

// CalendarEvent is the read-only display view of an external event used for
// listings. The core never mutates provider events.
type CalendarEvent struct {
	Date      string // MM/DD/YYYY in the reference zone
	Time      string // "3:05 PM" style, or "All day"
	Summary   string
	Attendees []EventAttendee // excluding the authenticated self
	MeetLink  string
}

// InsertRequest is the payload handed to a calendar-write provider. The
// provider is expected to request automatic conferencing and to notify every
// attendee itself.
type InsertRequest struct {
	Summary             string
	Start               time.Time
	End                 time.Time
	ZoneName            string
	Attendees           []string // attendee emails
	ConferenceRequestID string
}

// ConflictDetails describes the first existing event whose start time matched
// a requested slot.
type ConflictDetails struct {
	Time      string // display time of the blocking event
	Summary   string
	Attendees []string // attendee emails of the blocking event
}
