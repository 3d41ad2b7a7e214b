package intent

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

type fakeLLM struct {
	completion   string
	jsonPayload  string
	err          error
	lastUserMsg  string
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	f.lastUserMsg = user
	return f.completion, f.err
}

func (f *fakeLLM) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	f.lastUserMsg = user
	return f.jsonPayload, f.err
}

var testToday = time.Date(2025, 4, 7, 10, 0, 0, 0, time.UTC)

func TestExtract_EventsToday(t *testing.T) {
	e := NewExtractor(&fakeLLM{}, slog.Default())

	mi, err := e.Extract(context.Background(), "Show my events today", testToday)
	require.NoError(t, err)

	assert.Equal(t, models.IntentEventsQuery, mi.Kind)
	assert.Equal(t, models.QueryToday, mi.QueryTag)
	assert.Equal(t, "04/07/2025", mi.Date)
}

func TestExtract_MeetingsTomorrow(t *testing.T) {
	e := NewExtractor(&fakeLLM{}, slog.Default())

	mi, err := e.Extract(context.Background(), "What meetings do I have tomorrow?", testToday)
	require.NoError(t, err)

	assert.Equal(t, models.IntentEventsQuery, mi.Kind)
	assert.Equal(t, models.QueryTomorrow, mi.QueryTag)
	assert.Equal(t, "04/08/2025", mi.Date)
}

func TestExtract_EventsOnSpecificDate(t *testing.T) {
	llmClient := &fakeLLM{completion: "04/08/2025"}
	e := NewExtractor(llmClient, slog.Default())

	mi, err := e.Extract(context.Background(), "Show events on April 8th", testToday)
	require.NoError(t, err)

	assert.Equal(t, models.IntentEventsQuery, mi.Kind)
	assert.Equal(t, models.QuerySpecificDate, mi.QueryTag)
	assert.Equal(t, "04/08/2025", mi.Date)
}

// A bare MM/DD from the model is completed with the current year.
func TestExtract_BareMonthDayCompleted(t *testing.T) {
	llmClient := &fakeLLM{completion: "04/08"}
	e := NewExtractor(llmClient, slog.Default())

	mi, err := e.Extract(context.Background(), "Show events on April 8th", testToday)
	require.NoError(t, err)
	assert.Equal(t, "04/08/2025", mi.Date)
}

func TestExtract_MeetingRequest(t *testing.T) {
	llmClient := &fakeLLM{jsonPayload: `{"Person": "Aaron", "date": "04/08/2025", "time": "2pm", "summary": "Design sync"}`}
	e := NewExtractor(llmClient, slog.Default())

	mi, err := e.Extract(context.Background(), "Book a meeting with Aaron at 2pm tomorrow", testToday)
	require.NoError(t, err)

	assert.Equal(t, models.IntentMeetingRequest, mi.Kind)
	assert.Equal(t, []string{"Aaron"}, mi.PersonNames)
	assert.Equal(t, "04/08/2025", mi.Date)
	assert.Equal(t, "2pm", mi.Time)
	assert.Equal(t, "Design sync", mi.Summary)
	assert.Empty(t, mi.ExplicitEmail)
	assert.Contains(t, llmClient.lastUserMsg, "04/07/2025")
}

func TestExtract_PersonListAndCommaSplitting(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{"list", `{"Person": ["John", "Sarah"], "date": "04/08/2025", "time": "2pm"}`, []string{"John", "Sarah"}},
		{"comma string", `{"Person": "John, Sarah", "date": "04/08/2025", "time": "2pm"}`, []string{"John", "Sarah"}},
		{"absent", `{"date": "04/08/2025", "time": "2pm"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(&fakeLLM{jsonPayload: tt.payload}, slog.Default())
			mi, err := e.Extract(context.Background(), "Book a call with them", testToday)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mi.PersonNames)
		})
	}
}

func TestExtract_SummaryDefaults(t *testing.T) {
	e := NewExtractor(&fakeLLM{jsonPayload: `{"Person": "Aaron", "date": "04/08/2025", "time": "2pm"}`}, slog.Default())

	mi, err := e.Extract(context.Background(), "Book a call with Aaron", testToday)
	require.NoError(t, err)
	assert.Equal(t, "Meeting", mi.Summary)
}

// An email literal in the utterance always wins over name resolution.
func TestExtract_ExplicitEmailWins(t *testing.T) {
	e := NewExtractor(&fakeLLM{jsonPayload: `{"Person": "Bob", "date": "04/08/2025", "time": "2pm", "email": "wrong@co.com"}`}, slog.Default())

	mi, err := e.Extract(context.Background(), "Book a call with bob@example.org at 2pm", testToday)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.org", mi.ExplicitEmail)
}

func TestExtract_ModelEmailUsedWhenNoLiteralPresent(t *testing.T) {
	e := NewExtractor(&fakeLLM{jsonPayload: `{"Person": "Bob", "date": "04/08/2025", "time": "2pm", "email": "bob@co.com"}`}, slog.Default())

	mi, err := e.Extract(context.Background(), "Book a call with Bob at 2pm", testToday)
	require.NoError(t, err)
	assert.Equal(t, "bob@co.com", mi.ExplicitEmail)
}

func TestExtract_MalformedPayload(t *testing.T) {
	e := NewExtractor(&fakeLLM{jsonPayload: "sure, here are the meeting details"}, slog.Default())

	_, err := e.Extract(context.Background(), "Book a call with Aaron", testToday)
	assert.ErrorIs(t, err, models.ErrMalformedIntent)
}

func TestExtract_LLMFailurePropagates(t *testing.T) {
	e := NewExtractor(&fakeLLM{err: &models.ExternalServiceError{Service: "language service", Err: fmt.Errorf("down")}}, slog.Default())

	_, err := e.Extract(context.Background(), "Book a call with Aaron", testToday)

	var external *models.ExternalServiceError
	assert.ErrorAs(t, err, &external)
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"John", "Sarah"}, SplitNames(" John ,  Sarah "))
	assert.Equal(t, []string{"John"}, SplitNames("John"))
	assert.Nil(t, SplitNames(" , "))
}
