package attendee

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarankoundinya2000/alfie/internal/models"
)

type fakeDirectory struct {
	directory   []models.ContactCandidate
	connections []models.ContactCandidate
	err         error
}

func (f *fakeDirectory) SearchDirectory(ctx context.Context, query string) ([]models.ContactCandidate, error) {
	return f.directory, f.err
}

func (f *fakeDirectory) ListConnections(ctx context.Context) ([]models.ContactCandidate, error) {
	return f.connections, f.err
}

type fakeCalendar struct {
	events []models.SourceEvent
	err    error
}

func (f *fakeCalendar) ListEvents(ctx context.Context, min, max time.Time, maxResults int64) ([]models.SourceEvent, error) {
	return f.events, f.err
}

func newTestResolver(dir *fakeDirectory, cal *fakeCalendar) *Resolver {
	r := NewResolver(dir, cal, slog.Default())
	r.now = func() time.Time { return time.Date(2025, 4, 7, 12, 0, 0, 0, time.UTC) }
	return r
}

func historyEvent(start time.Time, attendees ...models.EventAttendee) models.SourceEvent {
	return models.SourceEvent{Summary: "Past meeting", Start: start, Attendees: attendees}
}

func TestCandidates_DedupKeepsExplicitSource(t *testing.T) {
	dir := &fakeDirectory{
		directory: []models.ContactCandidate{
			{Name: "Aaron Blake", Email: "aaron@co.com", Source: models.SourceDirectory},
		},
	}
	cal := &fakeCalendar{events: []models.SourceEvent{
		historyEvent(time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC),
			models.EventAttendee{Name: "Aaron Blake", Email: "aaron@co.com"}),
	}}

	candidates, err := newTestResolver(dir, cal).Candidates(context.Background(), "Aaron")
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "aaron@co.com", candidates[0].Email)
	assert.Equal(t, models.SourceDirectory, candidates[0].Source)
}

func TestCandidates_RanksByMatchQuality(t *testing.T) {
	dir := &fakeDirectory{
		directory: []models.ContactCandidate{
			{Name: "Zed Aaronson", Email: "zed@co.com", Source: models.SourceDirectory},
			{Name: "Aaron", Email: "aaron@co.com", Source: models.SourceDirectory},
			{Name: "Aaron Blake", Email: "blake@co.com", Source: models.SourceDirectory},
		},
	}

	candidates, err := newTestResolver(dir, &fakeCalendar{}).Candidates(context.Background(), "Aaron")
	require.NoError(t, err)

	require.Len(t, candidates, 3)
	assert.Equal(t, "aaron@co.com", candidates[0].Email) // exact
	assert.Equal(t, "blake@co.com", candidates[1].Email) // prefix
	assert.Equal(t, "zed@co.com", candidates[2].Email)   // substring
}

func TestCandidates_HistoryRankedByFrequencyAndRecency(t *testing.T) {
	aaron1 := models.EventAttendee{Name: "Aaron One", Email: "one@co.com"}
	aaron2 := models.EventAttendee{Name: "Aaron Two", Email: "two@co.com"}

	cal := &fakeCalendar{events: []models.SourceEvent{
		historyEvent(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), aaron1),
		historyEvent(time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC), aaron2),
		historyEvent(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), aaron2),
	}}

	candidates, err := newTestResolver(&fakeDirectory{}, cal).Candidates(context.Background(), "Aaron")
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, "two@co.com", candidates[0].Email)
	assert.Equal(t, 2, candidates[0].MeetingCount)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), candidates[0].LastSeen)
	assert.Equal(t, "one@co.com", candidates[1].Email)
}

func TestCandidates_ConnectionsFilteredClientSide(t *testing.T) {
	dir := &fakeDirectory{
		connections: []models.ContactCandidate{
			{Name: "Aaron Blake", Email: "aaron@personal.com", Source: models.SourcePersonalContact},
			{Name: "Maria Lopez", Email: "maria@personal.com", Source: models.SourcePersonalContact},
		},
	}

	candidates, err := newTestResolver(dir, &fakeCalendar{}).Candidates(context.Background(), "aaron")
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "aaron@personal.com", candidates[0].Email)
}

func TestCandidates_MatchesEmailLocalPartWhenNameMissing(t *testing.T) {
	cal := &fakeCalendar{events: []models.SourceEvent{
		historyEvent(time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC),
			models.EventAttendee{Email: "aaron@co.com"}),
	}}

	candidates, err := newTestResolver(&fakeDirectory{}, cal).Candidates(context.Background(), "aaron")
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "aaron", candidates[0].Name)
}

func TestResolve_SingleCandidateAutoResolves(t *testing.T) {
	dir := &fakeDirectory{
		directory: []models.ContactCandidate{
			{Name: "Aaron Blake", Email: "aaron@co.com", Source: models.SourceDirectory},
		},
	}

	candidate, err := newTestResolver(dir, &fakeCalendar{}).Resolve(context.Background(), "Aaron")
	require.NoError(t, err)
	assert.Equal(t, "aaron@co.com", candidate.Email)
}

func TestResolve_MultipleCandidatesRequireDisambiguation(t *testing.T) {
	dir := &fakeDirectory{
		directory: []models.ContactCandidate{
			{Name: "Aaron Blake", Email: "blake@co.com", Source: models.SourceDirectory},
			{Name: "Aaron Cole", Email: "cole@co.com", Source: models.SourceDirectory},
		},
	}

	_, err := newTestResolver(dir, &fakeCalendar{}).Resolve(context.Background(), "Aaron")

	var ambiguous *models.AmbiguousAttendeeError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Candidates, 2)
}

func TestResolve_NoCandidateIsNotFoundNeverFabricated(t *testing.T) {
	_, err := newTestResolver(&fakeDirectory{}, &fakeCalendar{}).Resolve(context.Background(), "Aaron")

	var notFound *models.AttendeeNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Aaron", notFound.Name)
}

func TestCandidates_SourceFailureSurfacesTypedError(t *testing.T) {
	cal := &fakeCalendar{err: fmt.Errorf("boom")}

	_, err := newTestResolver(&fakeDirectory{}, cal).Candidates(context.Background(), "Aaron")

	var external *models.ExternalServiceError
	require.ErrorAs(t, err, &external)
	assert.Equal(t, "calendar", external.Service)
}
