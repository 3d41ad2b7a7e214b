// Package intent turns a free-text scheduling utterance into a structured
// MeetingIntent.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sarankoundinya2000/alfie/internal/clock"
	"github.com/sarankoundinya2000/alfie/internal/llm"
	"github.com/sarankoundinya2000/alfie/internal/models"
)

var (
	emailPattern    = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)
	bareMonthDayRef = regexp.MustCompile(`^\d{1,2}/\d{1,2}$`)
)

const dateExtractionPrompt = "Extract the date from the text. If only month and day are provided " +
	"(like 'April 8th'), assume it's for the current year and return in MM/DD/YYYY format. " +
	"Return only the date."

const meetingExtractionPrompt = "Extract meeting details from the text. For multiple attendees, " +
	"return them as a list. If an email is found, use it directly. Format names consistently."

// Extractor classifies utterances and extracts structured meeting fields.
type Extractor struct {
	llm    llm.Client
	logger *slog.Logger
}

// NewExtractor creates an Extractor backed by the given language service.
func NewExtractor(llmClient llm.Client, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llmClient, logger: logger}
}

// Extract interprets one utterance against the supplied "today" reference
// date. Utterances mentioning events or meetings without scheduling details
// become events queries; everything else becomes a meeting request.
func (e *Extractor) Extract(ctx context.Context, utterance string, today time.Time) (*models.MeetingIntent, error) {
	lower := strings.ToLower(utterance)

	if strings.Contains(lower, "events") || strings.Contains(lower, "meetings") {
		if intent, ok, err := e.extractEventsQuery(ctx, utterance, lower, today); err != nil {
			return nil, err
		} else if ok {
			return intent, nil
		}
		// No recognizable date phrase: treat as a meeting request below.
	}

	return e.extractMeetingRequest(ctx, utterance, today)
}

// extractEventsQuery handles the listing path. Relative keywords resolve by
// day arithmetic on today; anything else is delegated to the language
// service, with a bare MM/DD completed to the current year.
func (e *Extractor) extractEventsQuery(ctx context.Context, utterance, lower string, today time.Time) (*models.MeetingIntent, bool, error) {
	switch {
	case strings.Contains(lower, "today"):
		return &models.MeetingIntent{
			Kind:     models.IntentEventsQuery,
			Date:     today.Format(clock.DateLayout),
			QueryTag: models.QueryToday,
		}, true, nil

	case strings.Contains(lower, "tomorrow"):
		return &models.MeetingIntent{
			Kind:     models.IntentEventsQuery,
			Date:     today.AddDate(0, 0, 1).Format(clock.DateLayout),
			QueryTag: models.QueryTomorrow,
		}, true, nil

	case strings.Contains(lower, "on") || strings.Contains(lower, "for"):
		extracted, err := e.llm.Complete(ctx, dateExtractionPrompt, utterance)
		if err != nil {
			return nil, false, err
		}
		extracted = strings.TrimSpace(extracted)
		if bareMonthDayRef.MatchString(extracted) {
			extracted = fmt.Sprintf("%s/%d", extracted, today.Year())
		}
		e.logger.Debug("Extracted events-query date", "date", extracted)
		return &models.MeetingIntent{
			Kind:     models.IntentEventsQuery,
			Date:     extracted,
			QueryTag: models.QuerySpecificDate,
		}, true, nil
	}

	return nil, false, nil
}

// rawMeeting mirrors the loosely-typed JSON the language service returns.
// Person is sometimes a string and sometimes a list.
type rawMeeting struct {
	Person  json.RawMessage `json:"Person"`
	Date    string          `json:"date"`
	Time    string          `json:"time"`
	Email   string          `json:"email"`
	Summary string          `json:"summary"`
}

func (e *Extractor) extractMeetingRequest(ctx context.Context, utterance string, today time.Time) (*models.MeetingIntent, error) {
	foundEmail := emailPattern.FindString(utterance)

	user := fmt.Sprintf("Extract meeting details from: '%s' and today's date %s. "+
		"Return a JSON object with: "+
		"'Person' (name or email, if multiple names return as list), "+
		"'date' (MM/DD/YYYY), 'time', 'email' (if found in input), 'summary'. "+
		"Example for multiple people: \"Person\": [\"John\", \"Sarah\"]. "+
		"Only return the JSON object, no other text.",
		utterance, today.Format(clock.DateLayout))

	content, err := e.llm.CompleteJSON(ctx, meetingExtractionPrompt, user)
	if err != nil {
		return nil, err
	}

	var raw rawMeeting
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		e.logger.Warn("Unparsable extraction payload", "content", content, "error", err)
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedIntent, err)
	}

	intent := &models.MeetingIntent{
		Kind:        models.IntentMeetingRequest,
		PersonNames: coercePersons(raw.Person),
		Date:        raw.Date,
		Time:        raw.Time,
		Summary:     raw.Summary,
	}
	if intent.Summary == "" {
		intent.Summary = "Meeting"
	}

	// An email literal in the input always wins over name resolution.
	if foundEmail != "" {
		intent.ExplicitEmail = foundEmail
	} else if emailPattern.MatchString(raw.Email) {
		intent.ExplicitEmail = raw.Email
	}

	return intent, nil
}

// coercePersons normalizes the Person field to a list of clean names: a bare
// string is wrapped, comma-separated strings are split, absent means empty.
func coercePersons(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return SplitNames(one)
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		var names []string
		for _, n := range many {
			names = append(names, SplitNames(n)...)
		}
		return names
	}

	return nil
}

// SplitNames splits a comma-separated name string and trims each entry,
// dropping empties.
func SplitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
