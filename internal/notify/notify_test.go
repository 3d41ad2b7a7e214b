package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildICS(t *testing.T) {
	start := time.Date(2025, 4, 8, 18, 0, 0, 0, time.UTC)
	ics, err := BuildICS(Invite{
		Summary:   "Design sync",
		Start:     start,
		End:       start.Add(time.Hour),
		Organizer: "me@co.com",
		Attendees: []string{"aaron@co.com", "sarah@co.com"},
		MeetLink:  "https://meet.google.com/abc-defg-hij",
	})
	require.NoError(t, err)

	body := string(ics)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "BEGIN:VEVENT")
	assert.Contains(t, body, "SUMMARY:Design sync")
	assert.Contains(t, body, "mailto:aaron@co.com")
	assert.Contains(t, body, "mailto:sarah@co.com")
	assert.Contains(t, body, "mailto:me@co.com")
	assert.Contains(t, body, "UID:")
}

func TestBuildICS_OptionalFieldsOmitted(t *testing.T) {
	start := time.Date(2025, 4, 8, 18, 0, 0, 0, time.UTC)
	ics, err := BuildICS(Invite{
		Summary: "Design sync",
		Start:   start,
		End:     start.Add(time.Hour),
	})
	require.NoError(t, err)

	body := string(ics)
	assert.NotContains(t, body, "ORGANIZER")
	assert.NotContains(t, body, "DESCRIPTION")
}
