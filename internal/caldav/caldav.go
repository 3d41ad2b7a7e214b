// Package caldav exposes a CalDAV calendar (iCloud by default) as a
// read-only event source, so conflict checks and listings also see events
// kept outside Google Calendar.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"github.com/sarankoundinya2000/alfie/internal/models"
)

const iCloudEndpoint = "https://caldav.icloud.com/"

// customTransport handles adding Basic Auth and custom headers to requests.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "alfie/1.0")
	return t.Transport.RoundTrip(req)
}

// Client reads events from a single CalDAV calendar.
type Client struct {
	caldavClient *caldav.Client
	logger       *slog.Logger
	calendarPath string
}

// NewClient connects to the CalDAV endpoint and locates the named calendar.
// An empty endpoint defaults to iCloud.
func NewClient(logger *slog.Logger, endpoint, username, password, calendarName string) (*Client, error) {
	if endpoint == "" {
		endpoint = iCloudEndpoint
	}

	transport := &customTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	c := &Client{caldavClient: caldavClient, logger: logger}

	logger.Info("Finding CalDAV calendar", "calendarName", calendarName)
	calendarPath, err := c.findCalendar(context.Background(), calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Successfully found CalDAV calendar", "path", calendarPath)

	return c, nil
}

// ListEvents queries the calendar for events in [min, max] and returns them
// ordered by start time. A zero max queries one year ahead of min.
func (c *Client) ListEvents(ctx context.Context, min, max time.Time, maxResults int64) ([]models.SourceEvent, error) {
	if max.IsZero() {
		max = min.AddDate(1, 0, 0)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			Comps: []caldav.CalendarCompRequest{{
				Name:     ical.CompEvent,
				AllProps: true,
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: min,
				End:   max,
			}},
		},
	}

	objects, err := c.caldavClient.QueryCalendar(ctx, c.calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query caldav calendar: %w", err)
	}

	var events []models.SourceEvent
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, ev := range obj.Data.Events() {
			source, ok := c.toSourceEvent(ev)
			if !ok {
				continue
			}
			if !source.AllDay && (source.Start.Before(min) || source.Start.After(max)) {
				continue
			}
			events = append(events, source)
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	if maxResults > 0 && int64(len(events)) > maxResults {
		events = events[:maxResults]
	}

	c.logger.Debug("Fetched events from CalDAV", "count", len(events))
	return events, nil
}

// toSourceEvent converts an iCal VEVENT to the internal source model.
func (c *Client) toSourceEvent(ev ical.Event) (models.SourceEvent, bool) {
	startProp := ev.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return models.SourceEvent{}, false
	}

	source := models.SourceEvent{}
	if uidProp := ev.Props.Get(ical.PropUID); uidProp != nil {
		source.ID = uidProp.Value
	}
	if summaryProp := ev.Props.Get(ical.PropSummary); summaryProp != nil {
		source.Summary = summaryProp.Value
	}

	start, err := ev.DateTimeStart(time.UTC)
	if err != nil {
		return models.SourceEvent{}, false
	}
	if startProp.ValueType() == ical.ValueDate {
		source.AllDay = true
		source.Date = start.Format("2006-01-02")
	} else {
		source.Start = start
	}

	for _, p := range ev.Props.Values(ical.PropAttendee) {
		email := strings.TrimPrefix(strings.ToLower(p.Value), "mailto:")
		if email == "" {
			continue
		}
		source.Attendees = append(source.Attendees, models.EventAttendee{
			Name:  p.Params.Get(ical.ParamCommonName),
			Email: email,
		})
	}

	return source, true
}

// findCalendar discovers the account's calendars and returns the path of the
// one with the matching name. An empty name picks the first calendar.
func (c *Client) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if name == "" || cal.Name == name {
			return cal.Path, nil
		}
	}

	return "", fmt.Errorf("no calendar found with name '%s'", name)
}
