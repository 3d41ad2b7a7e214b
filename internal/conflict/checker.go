// Package conflict lists the events of a target day and flags requested time
// slots already occupied by an existing event.
package conflict

import (
	"context"
	"log/slog"
	"time"

	"github.com/sarankoundinya2000/alfie/internal/clock"
	"github.com/sarankoundinya2000/alfie/internal/models"
)

// dayMaxResults bounds a single day-listing read.
const dayMaxResults = 20

// EventSource is the calendar read capability the checker consumes.
type EventSource interface {
	ListEvents(ctx context.Context, min, max time.Time, maxResults int64) ([]models.SourceEvent, error)
}

// MultiSource reads from several providers in order and concatenates their
// events. Any provider failure fails the whole read.
type MultiSource []EventSource

func (m MultiSource) ListEvents(ctx context.Context, min, max time.Time, maxResults int64) ([]models.SourceEvent, error) {
	var all []models.SourceEvent
	for _, source := range m {
		events, err := source.ListEvents(ctx, min, max, maxResults)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	return all, nil
}

// Checker renders day listings and detects exact start-time conflicts.
type Checker struct {
	source EventSource
	zone   *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewChecker creates a Checker rendering times in the given reference zone.
func NewChecker(source EventSource, zone *time.Location, logger *slog.Logger) *Checker {
	return &Checker{source: source, zone: zone, logger: logger, now: time.Now}
}

// Check lists the events of targetDate and, when targetTime is supplied,
// flags the first event whose local start time equals the normalized request.
// An empty targetDate lists upcoming events from the current instant instead.
// A failed read surfaces as an empty listing with the error, never as a
// silent "no conflict". Conflicts compare start times only; overlapping
// intervals with different starts are not flagged.
func (c *Checker) Check(ctx context.Context, targetDate, targetTime string) ([]models.CalendarEvent, *models.ConflictDetails, error) {
	var min, max time.Time
	if targetDate != "" {
		canonical, err := clock.ResolveDate(targetDate, c.now().Year())
		if err != nil {
			return nil, nil, err
		}
		min, max, err = clock.DayWindow(canonical, c.zone)
		if err != nil {
			return nil, nil, err
		}
	} else {
		min = c.now().UTC()
	}

	events, err := c.source.ListEvents(ctx, min, max, dayMaxResults)
	if err != nil {
		c.logger.Error("Calendar read failed during conflict check", "error", err)
		return nil, nil, &models.ExternalServiceError{Service: "calendar", Err: err}
	}

	// An unparsable requested time can never match; time validation proper
	// happens at booking.
	requested := ""
	if targetTime != "" {
		if normalized, err := clock.NormalizeTime(targetTime); err == nil {
			requested = normalized
		}
	}

	var listing []models.CalendarEvent
	var details *models.ConflictDetails

	for _, ev := range events {
		view := models.CalendarEvent{
			Summary:  ev.Summary,
			MeetLink: ev.MeetLink,
		}
		for _, a := range ev.Attendees {
			if a.Self {
				continue
			}
			view.Attendees = append(view.Attendees, a)
		}

		if ev.AllDay {
			view.Time = "All day"
			view.Date = ev.Date
			listing = append(listing, view)
			continue
		}

		local := ev.Start.In(c.zone)
		view.Time = local.Format(clock.DisplayTimeLayout)
		view.Date = local.Format(clock.DateLayout)
		listing = append(listing, view)

		// First match in source order wins.
		if requested != "" && details == nil && local.Format(clock.TimeLayout) == requested {
			details = &models.ConflictDetails{
				Time:      view.Time,
				Summary:   ev.Summary,
				Attendees: attendeeEmails(ev),
			}
		}
	}

	return listing, details, nil
}

func attendeeEmails(ev models.SourceEvent) []string {
	var emails []string
	for _, a := range ev.Attendees {
		emails = append(emails, a.Email)
	}
	return emails
}
