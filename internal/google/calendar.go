// Package google wraps the Google Calendar and People APIs behind the small
// read/write surfaces the assistant consumes.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/sarankoundinya2000/alfie/internal/models"
)

const primaryCalendarID = "primary"

// CalendarClient provides event listing and creation on the authenticated
// account's primary calendar.
type CalendarClient struct {
	service *calendar.Service
	logger  *slog.Logger
}

// NewCalendarClient creates a calendar client from an authenticated HTTP client.
func NewCalendarClient(ctx context.Context, logger *slog.Logger, client *http.Client) (*CalendarClient, error) {
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &CalendarClient{service: service, logger: logger}, nil
}

// ListEvents fetches single events ordered by start time from the primary
// calendar. A zero max leaves the window open-ended.
func (c *CalendarClient) ListEvents(ctx context.Context, min, max time.Time, maxResults int64) ([]models.SourceEvent, error) {
	call := c.service.Events.List(primaryCalendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(min.Format(time.RFC3339)).
		OrderBy("startTime").
		MaxResults(maxResults).
		Context(ctx)
	if !max.IsZero() {
		call = call.TimeMax(max.Format(time.RFC3339))
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	c.logger.Debug("Fetched events from Google Calendar", "count", len(events.Items))
	return toSourceEvents(events.Items), nil
}

// CreateEvent inserts an event with a Google Meet conference request and
// provider-side attendee notification. It returns the assigned meet link.
func (c *CalendarClient) CreateEvent(ctx context.Context, req models.InsertRequest) (string, error) {
	event := &calendar.Event{
		Summary: req.Summary,
		Start: &calendar.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: req.ZoneName,
		},
		End: &calendar.EventDateTime{
			DateTime: req.End.Format(time.RFC3339),
			TimeZone: req.ZoneName,
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             req.ConferenceRequestID,
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}
	for _, email := range req.Attendees {
		if email == "" {
			continue
		}
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := c.service.Events.Insert(primaryCalendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}

	c.logger.Info("Created calendar event", "summary", req.Summary, "start", req.Start)
	return created.HangoutLink, nil
}

// toSourceEvents converts Google Calendar events to the internal source model.
func toSourceEvents(googleEvents []*calendar.Event) []models.SourceEvent {
	var events []models.SourceEvent
	for _, item := range googleEvents {
		if item.Start == nil {
			continue
		}

		ev := models.SourceEvent{
			ID:       item.Id,
			Summary:  item.Summary,
			MeetLink: item.HangoutLink,
		}
		if item.Start.DateTime != "" {
			start, err := time.Parse(time.RFC3339, item.Start.DateTime)
			if err != nil {
				continue
			}
			ev.Start = start
		} else {
			ev.AllDay = true
			ev.Date = item.Start.Date
		}

		for _, a := range item.Attendees {
			ev.Attendees = append(ev.Attendees, models.EventAttendee{
				Name:  a.DisplayName,
				Email: a.Email,
				Self:  a.Self,
			})
		}
		events = append(events, ev)
	}
	return events
}
