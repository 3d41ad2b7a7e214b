// Package clock normalizes the free-form date and time text found in
// scheduling utterances into canonical values.
package clock

import (
	"fmt"
	"strings"
	"time"

	"github.com/sarankoundinya2000/alfie/internal/models"
)

// DefaultZoneName is the fixed reference zone used to interpret and render
// all date/time values unless overridden by configuration.
const DefaultZoneName = "America/New_York"

// DateLayout is the canonical calendar-date layout.
const DateLayout = "01/02/2006"

// TimeLayout is the canonical 24-hour clock layout.
const TimeLayout = "15:04"

// DisplayTimeLayout renders a 12-hour time without a leading zero.
const DisplayTimeLayout = "3:04 PM"

// NormalizeTime converts clock-time text such as "2pm", "2:00pm", "2:00 PM"
// or "14:00" into canonical "HH:MM". All failure paths return
// models.ErrInvalidTimeFormat, never a partial result.
func NormalizeTime(text string) (string, error) {
	s := strings.ToLower(strings.ReplaceAll(text, " ", ""))

	// A colon without an am/pm marker means the text is already 24-hour.
	if strings.Contains(s, ":") && !strings.Contains(s, "am") && !strings.Contains(s, "pm") {
		t, err := time.Parse("15:04", s)
		if err != nil {
			return "", models.ErrInvalidTimeFormat
		}
		return t.Format(TimeLayout), nil
	}

	// 12-hour form. Insert the minutes if they are missing ("2pm" -> "2:00pm").
	if !strings.Contains(s, ":") {
		s = strings.Replace(s, "am", ":00am", 1)
		s = strings.Replace(s, "pm", ":00pm", 1)
	}

	t, err := time.Parse("3:04pm", s)
	if err != nil {
		return "", models.ErrInvalidTimeFormat
	}
	return t.Format(TimeLayout), nil
}

// ResolveDate converts date text into canonical "MM/DD/YYYY". Month-name
// forms ("April 8") and year-less forms ("04/08", "04-08") are completed
// with referenceYear.
func ResolveDate(text string, referenceYear int) (string, error) {
	s := strings.TrimSpace(text)

	if !strings.ContainsAny(s, "/-") {
		if t, err := time.Parse("January 2", s); err == nil {
			s = fmt.Sprintf("%02d/%02d/%d", int(t.Month()), t.Day(), referenceYear)
		}
	}

	s = strings.ReplaceAll(s, "-", "/")

	// Month/day only: complete with the reference year.
	if strings.Count(s, "/") == 1 {
		s = fmt.Sprintf("%s/%d", s, referenceYear)
	}

	t, err := time.Parse("1/2/2006", s)
	if err != nil {
		return "", &models.InvalidDateError{Input: text}
	}
	return t.Format(DateLayout), nil
}

// DayWindow returns the UTC bounds of the calendar day named by a canonical
// MM/DD/YYYY date, interpreted in zone.
func DayWindow(date string, zone *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, zone)
	if err != nil {
		return time.Time{}, time.Time{}, &models.InvalidDateError{Input: date}
	}
	start := day
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 999999000, zone)
	return start.UTC(), end.UTC(), nil
}

// DisplayTime renders a canonical "HH:MM" value as a 12-hour display time
// with the leading zero stripped.
func DisplayTime(normalized string) (string, error) {
	t, err := time.Parse(TimeLayout, normalized)
	if err != nil {
		return "", models.ErrInvalidTimeFormat
	}
	return t.Format(DisplayTimeLayout), nil
}
