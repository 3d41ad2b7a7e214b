// Package assistant wires the interpretation and resolution pipeline: one
// utterance in, an events listing or a booking outcome out. Requests are
// handled one at a time; the authenticated identity travels in a
// request-scoped Session, never in package state.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sarankoundinya2000/alfie/internal/attendee"
	"github.com/sarankoundinya2000/alfie/internal/booking"
	"github.com/sarankoundinya2000/alfie/internal/conflict"
	"github.com/sarankoundinya2000/alfie/internal/intent"
	"github.com/sarankoundinya2000/alfie/internal/models"
	"github.com/sarankoundinya2000/alfie/internal/notify"
)

// Notifier delivers post-booking emails. Nil disables notification.
type Notifier interface {
	NotifyAll(ctx context.Context, inv notify.Invite, body string)
}

// Session carries the per-request identity and reference date.
type Session struct {
	UserEmail string
	Today     time.Time
}

// Resolution is the per-name outcome of attendee resolution. Partial
// successes are reported per attendee, never collapsed into one failure.
type Resolution struct {
	Name       string
	Email      string                    // set when resolution committed
	Candidates []models.ContactCandidate // set when disambiguation is required
	Err        error
}

// Resolved reports whether this name committed to an email.
func (r Resolution) Resolved() bool { return r.Email != "" }

// Outcome is everything a presentation layer needs to render one handled
// utterance.
type Outcome struct {
	Intent      *models.MeetingIntent
	Title       string                 // events listing heading
	Events      []models.CalendarEvent // events query path
	Resolutions []Resolution           // meeting request path
	Booking     *models.BookingResult  // set when a booking was attempted
}

// Assistant drives the request-interpretation and attendee-resolution
// pipeline.
type Assistant struct {
	intents  *intent.Extractor
	resolver *attendee.Resolver
	checker  *conflict.Checker
	booker   *booking.Orchestrator
	notifier Notifier
	logger   *slog.Logger
}

// New creates an Assistant. notifier may be nil.
func New(intents *intent.Extractor, resolver *attendee.Resolver, checker *conflict.Checker, booker *booking.Orchestrator, notifier Notifier, logger *slog.Logger) *Assistant {
	return &Assistant{
		intents:  intents,
		resolver: resolver,
		checker:  checker,
		booker:   booker,
		notifier: notifier,
		logger:   logger,
	}
}

// Interpret extracts the structured intent for one utterance.
func (a *Assistant) Interpret(ctx context.Context, sess Session, utterance string) (*models.MeetingIntent, error) {
	return a.intents.Extract(ctx, utterance, sess.Today)
}

// ListEvents runs the events-query path and returns a heading plus the
// day's listing.
func (a *Assistant) ListEvents(ctx context.Context, mi *models.MeetingIntent) (string, []models.CalendarEvent, error) {
	events, _, err := a.checker.Check(ctx, mi.Date, "")
	if err != nil {
		return "", nil, err
	}

	var title string
	switch mi.QueryTag {
	case models.QueryToday:
		title = "Today's Events"
	case models.QueryTomorrow:
		title = "Tomorrow's Events"
	default:
		title = fmt.Sprintf("Events on %s", mi.Date)
	}
	return title, events, nil
}

// ResolveAttendees resolves each named person independently and reports the
// outcome per name. AmbiguousAttendeeError and AttendeeNotFoundError are
// pauses for the caller to act on, not failures.
func (a *Assistant) ResolveAttendees(ctx context.Context, mi *models.MeetingIntent) []Resolution {
	resolutions := make([]Resolution, 0, len(mi.PersonNames))
	for _, name := range mi.PersonNames {
		res := Resolution{Name: name}

		candidate, err := a.resolver.Resolve(ctx, name)
		switch {
		case err == nil:
			res.Email = candidate.Email
		default:
			var ambiguous *models.AmbiguousAttendeeError
			if errors.As(err, &ambiguous) {
				res.Candidates = ambiguous.Candidates
			}
			res.Err = err
		}
		resolutions = append(resolutions, res)
	}
	return resolutions
}

// Book books the meeting with fully resolved attendee emails and, on
// success, fires the notification emails.
func (a *Assistant) Book(ctx context.Context, sess Session, mi *models.MeetingIntent, emails []string) models.BookingResult {
	result := a.booker.Book(ctx, mi.Date, mi.Time, emails, mi.Summary)
	if result.Status != models.BookingBooked || a.notifier == nil {
		return result
	}

	body := fmt.Sprintf("Hello,\n\n"+
		"Your appointment has been scheduled with the following details:\n"+
		"- Date: %s\n- Time: %s\n- Summary: %s\n- Attendees: %s\n\n"+
		"Thank you!",
		mi.Date, mi.Time, mi.Summary, strings.Join(emails, ", "))

	a.notifier.NotifyAll(ctx, notify.Invite{
		Summary:   mi.Summary,
		Start:     result.Start,
		End:       result.End,
		Organizer: sess.UserEmail,
		Attendees: emails,
		MeetLink:  result.MeetLink,
	}, body)

	return result
}

// Handle runs the full pipeline for one utterance without human
// interaction: events queries are listed, and meeting requests are booked
// when every attendee either was given explicitly or auto-resolved to a
// single candidate. When any name needs disambiguation or a manual email,
// the outcome carries the per-name resolutions and no booking is attempted.
func (a *Assistant) Handle(ctx context.Context, sess Session, utterance string) (*Outcome, error) {
	mi, err := a.Interpret(ctx, sess, utterance)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Intent: mi}

	if mi.Kind == models.IntentEventsQuery {
		title, events, err := a.ListEvents(ctx, mi)
		if err != nil {
			return nil, err
		}
		outcome.Title = title
		outcome.Events = events
		return outcome, nil
	}

	var emails []string
	if mi.ExplicitEmail != "" {
		emails = []string{mi.ExplicitEmail}
	} else {
		outcome.Resolutions = a.ResolveAttendees(ctx, mi)
		for _, res := range outcome.Resolutions {
			if !res.Resolved() {
				a.logger.Info("Attendee needs input before booking", "name", res.Name, "reason", res.Err)
				return outcome, nil
			}
			emails = append(emails, res.Email)
		}
	}

	if len(emails) == 0 {
		return outcome, nil
	}

	result := a.Book(ctx, sess, mi, emails)
	outcome.Booking = &result
	return outcome, nil
}
