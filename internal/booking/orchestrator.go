// Package booking creates calendar events after re-verifying that the
// requested slot is still free.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sarankoundinya2000/alfie/internal/clock"
	"github.com/sarankoundinya2000/alfie/internal/conflict"
	"github.com/sarankoundinya2000/alfie/internal/models"
)

// meetingDuration is fixed; the end of a booked slot is always one hour
// after its start.
const meetingDuration = time.Hour

// EventWriter is the calendar write capability the orchestrator consumes.
type EventWriter interface {
	CreateEvent(ctx context.Context, req models.InsertRequest) (string, error)
}

// Orchestrator drives a booking attempt from conflict re-check to creation.
type Orchestrator struct {
	checker *conflict.Checker
	writer  EventWriter
	zone    *time.Location
	logger  *slog.Logger
	now     func() time.Time
}

// NewOrchestrator creates an Orchestrator booking in the given reference zone.
func NewOrchestrator(checker *conflict.Checker, writer EventWriter, zone *time.Location, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		checker: checker,
		writer:  writer,
		zone:    zone,
		logger:  logger,
		now:     time.Now,
	}
}

// Book re-checks conflicts, validates the time, and creates a one-hour event
// with a conference link and provider-side attendee notification. The
// conflict check always runs here, immediately before creation, rather than
// trusting an earlier caller-side check: availability shown to the user may
// have gone stale by the time booking executes.
func (o *Orchestrator) Book(ctx context.Context, date, timeText string, attendees []string, summary string) models.BookingResult {
	if summary == "" {
		summary = "Meeting"
	}

	_, details, err := o.checker.Check(ctx, date, timeText)
	if err != nil {
		return models.BookingResult{Status: models.BookingFailed, Reason: err.Error()}
	}
	if details != nil {
		o.logger.Info("Booking blocked by existing event",
			"date", date, "time", details.Time, "summary", details.Summary)
		return models.BookingResult{Status: models.BookingConflict, Conflict: details}
	}

	normalized, err := clock.NormalizeTime(timeText)
	if err != nil {
		return models.BookingResult{Status: models.BookingInvalidTime, Reason: err.Error()}
	}

	canonicalDate, err := clock.ResolveDate(date, o.now().Year())
	if err != nil {
		return models.BookingResult{Status: models.BookingFailed, Reason: err.Error()}
	}

	start, err := time.ParseInLocation(clock.DateLayout+" "+clock.TimeLayout, canonicalDate+" "+normalized, o.zone)
	if err != nil {
		return models.BookingResult{Status: models.BookingFailed, Reason: err.Error()}
	}

	meetLink, err := o.writer.CreateEvent(ctx, models.InsertRequest{
		Summary:             summary,
		Start:               start,
		End:                 start.Add(meetingDuration),
		ZoneName:            o.zone.String(),
		Attendees:           attendees,
		ConferenceRequestID: uuid.New().String(),
	})
	if err != nil {
		o.logger.Error("Event creation failed", "summary", summary, "error", err)
		return models.BookingResult{
			Status: models.BookingFailed,
			Reason: (&models.ExternalServiceError{Service: "calendar", Err: err}).Error(),
		}
	}

	display, _ := clock.DisplayTime(normalized)
	confirmation := fmt.Sprintf("Appointment booked for %s at %s on %s with %s",
		summary, display, canonicalDate, strings.Join(attendees, ", "))
	o.logger.Info("Booked meeting", "summary", summary, "start", start, "attendees", len(attendees))

	return models.BookingResult{
		Status:       models.BookingBooked,
		Confirmation: confirmation,
		MeetLink:     meetLink,
		Start:        start,
		End:          start.Add(meetingDuration),
	}
}
