package models

// IntentKind distinguishes the two kinds of utterance the assistant handles.
type IntentKind string

const (
	IntentEventsQuery    IntentKind = "events_query"
	IntentMeetingRequest IntentKind = "meeting_request"
)

// QueryTag records how the date of an events query was phrased.
type QueryTag string

const (
	QueryToday        QueryTag = "today"
	QueryTomorrow     QueryTag = "tomorrow"
	QuerySpecificDate QueryTag = "specific_date"
)

// MeetingIntent is the structured interpretation of one user utterance.
// It is built once by the intent extractor and never mutated afterwards.
type MeetingIntent struct {
	Kind IntentKind

	// Events query fields.
	Date     string // MM/DD/YYYY for queries; raw extracted text for requests
	QueryTag QueryTag

	// Meeting request fields.
	PersonNames   []string // raw names in mention order, may be empty
	ExplicitEmail string   // email literal found verbatim in the input, wins over name resolution
	Time          string   // raw, pre-normalization
	Summary       string   // defaults to "Meeting"
}
