package models

import "time"

// CandidateSource tags where a contact candidate came from.
type CandidateSource string

const (
	SourceDirectory       CandidateSource = "directory"
	SourcePersonalContact CandidateSource = "contacts"
	SourceCalendarHistory CandidateSource = "calendar"
)

// ContactCandidate is a possible email match for a named person.
// Candidates are built per resolution query and not persisted.
type ContactCandidate struct {
	Name   string
	Email  string // unique key within a candidate set
	Source CandidateSource

	// Calendar-history candidates only.
	MeetingCount int       // times seen as co-attendee in the scanned window
	LastSeen     time.Time // start of the most recent matching event
}
