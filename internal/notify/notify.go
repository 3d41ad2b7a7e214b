// Package notify sends booking confirmation emails with an iCalendar invite
// attached. Delivery is fire-and-forget per attendee; the calendar provider
// has already sent its own invitations by the time this runs.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

const subject = "Event booked"

// Config holds the SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Invite carries the booked meeting details for the notification email and
// its attached invite.
type Invite struct {
	Summary   string
	Start     time.Time
	End       time.Time
	Organizer string
	Attendees []string
	MeetLink  string
}

// Mailer sends notification emails over SMTP.
type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

// NewMailer creates a Mailer from SMTP settings.
func NewMailer(cfg Config, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// NotifyAll emails every attendee. A failed delivery is logged and never
// blocks the remaining recipients.
func (m *Mailer) NotifyAll(ctx context.Context, inv Invite, body string) {
	for _, to := range inv.Attendees {
		if to == "" {
			continue
		}
		if err := m.Send(ctx, to, body, inv); err != nil {
			m.logger.Error("Failed to send booking notification", "to", to, "error", err)
			continue
		}
		m.logger.Info("Sent booking notification", "to", to)
	}
}

// Send delivers one notification email with the invite attached.
func (m *Mailer) Send(ctx context.Context, to, body string, inv Invite) error {
	if inv.MeetLink != "" {
		body += fmt.Sprintf("\n\nJoin the meeting at: %s", inv.MeetLink)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	ics, err := BuildICS(inv)
	if err != nil {
		return fmt.Errorf("failed to build invite: %w", err)
	}
	msg.AttachReader("invite.ics", bytes.NewReader(ics),
		mail.WithFileContentType(mail.ContentType("text/calendar")))

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}

// BuildICS renders the invite as an iCalendar document.
func BuildICS(inv Invite) ([]byte, error) {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uuid.New().String())
	ve.Props.SetText(ical.PropSummary, inv.Summary)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, inv.Start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, inv.End)

	if inv.MeetLink != "" {
		ve.Props.SetText(ical.PropDescription, fmt.Sprintf("Join the meeting at: %s", inv.MeetLink))
	}
	if inv.Organizer != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText(fmt.Sprintf("mailto:%s", inv.Organizer))
		ve.Props.Add(p)
	}
	for _, attendee := range inv.Attendees {
		p := ical.NewProp(ical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", attendee))
		ve.Props.Add(p)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//alfie//EN")
	cal.Children = append(cal.Children, ve)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode invite to iCal format: %w", err)
	}
	return buf.Bytes(), nil
}
