package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingTime     = errors.New("event time has neither dateTime nor date")
	ErrUnparseableTime = errors.New("event time cannot be parsed")
)

// DateLayout is the layout of all-day event dates.
const DateLayout = "2006-01-02"

// naiveLayout matches dateTime values sent without an offset; they are read as UTC.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// EventStatus is the lifecycle state reported by the provider.
type EventStatus string

const (
	StatusConfirmed EventStatus = "confirmed"
	StatusTentative EventStatus = "tentative"
	StatusCancelled EventStatus = "cancelled"
)

// NormalizeStatus maps provider spellings onto EventStatus. Unknown values are kept lowercased.
func NormalizeStatus(raw string) EventStatus {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "", "confirmed":
		return StatusConfirmed
	case "canceled", "cancelled":
		return StatusCancelled
	default:
		return EventStatus(s)
	}
}

// EventTime is a start or end as the provider sent it: an instant, or a date for all-day events.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

// At builds an EventTime for a specific instant.
func At(t time.Time) EventTime {
	return EventTime{DateTime: t.UTC().Format(time.RFC3339)}
}

// OnDate builds an all-day EventTime.
func OnDate(t time.Time) EventTime {
	return EventTime{Date: t.Format(DateLayout)}
}

// IsAllDay reports whether the time only carries a date.
func (t EventTime) IsAllDay() bool {
	return t.DateTime == "" && t.Date != ""
}

// Instant parses the dateTime value.
func (t EventTime) Instant() (time.Time, error) {
	if t.DateTime == "" {
		if t.Date != "" {
			return time.Time{}, fmt.Errorf("%w: all-day value %q has no instant", ErrUnparseableTime, t.Date)
		}
		return time.Time{}, ErrMissingTime
	}
	parsed, err := time.Parse(time.RFC3339, t.DateTime)
	if err != nil {
		parsed, err = time.ParseInLocation(naiveLayout, t.DateTime, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTime, t.DateTime)
		}
	}
	return parsed.UTC(), nil
}

// CalendarEvent is one entry read from a participant's calendar.
type CalendarEvent struct {
	ID            string      `json:"id"`
	Summary       string      `json:"summary,omitempty"`
	Status        EventStatus `json:"status,omitempty"`
	Start         EventTime   `json:"start"`
	End           EventTime   `json:"end"`
	AttendeeCount int         `json:"attendee_count,omitempty"`
	Creator       string      `json:"creator,omitempty"`
}

// IsCancelled reports whether the event was cancelled.
func (e CalendarEvent) IsCancelled() bool {
	return e.Status == StatusCancelled
}

// IsAllDay reports whether either end is a bare date.
func (e CalendarEvent) IsAllDay() bool {
	return e.Start.IsAllDay() || e.End.IsAllDay()
}

// Overlaps reports whether a timed event intersects [start, end). All-day and unparseable events
// are compared by date so range filters keep them for the busy-time pass to judge.
func (e CalendarEvent) Overlaps(start, end time.Time) bool {
	s, errS := e.Start.Instant()
	f, errF := e.End.Instant()
	if errS == nil && errF == nil {
		return s.Before(end) && f.After(start)
	}
	if day, err := time.Parse(DateLayout, e.Start.Date); err == nil {
		return day.Before(end) && day.AddDate(0, 0, 1).After(start)
	}
	return true
}
