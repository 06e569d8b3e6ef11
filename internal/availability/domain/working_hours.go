package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidWorkingHours = errors.New("working hours must satisfy 0 <= start < end <= 24")
)

// WorkingHours bounds the clock hours of each UTC day in which meetings may be placed.
// The window is [StartHour:00, EndHour:00); EndHour 24 means the following midnight.
type WorkingHours struct {
	StartHour int
	EndHour   int
}

// DefaultWorkingHours returns 09:00-17:00.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{StartHour: 9, EndHour: 17}
}

// Validate checks the hours are within a single day and ordered.
func (w WorkingHours) Validate() error {
	if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidWorkingHours, w.StartHour, w.EndHour)
	}
	return nil
}

// ForDay returns the working interval of the UTC day containing day.
// The second result is false when the hours describe an empty window.
func (w WorkingHours) ForDay(day time.Time) (TimeInterval, bool) {
	if w.StartHour >= w.EndHour {
		return TimeInterval{}, false
	}
	midnight := truncateToDay(day)
	start := midnight.Add(time.Duration(w.StartHour) * time.Hour)
	end := midnight.Add(time.Duration(w.EndHour) * time.Hour)
	ti, err := NewTimeInterval(start, end)
	if err != nil {
		return TimeInterval{}, false
	}
	return ti, true
}

// Window is the search range of a request. Both ends are inclusive at day granularity.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow normalises both ends to UTC.
func NewWindow(start, end time.Time) Window {
	return Window{Start: start.UTC(), End: end.UTC()}
}

// Days returns the midnight of every UTC calendar day from Start's date to End's date inclusive.
func (w Window) Days() []time.Time {
	first := truncateToDay(w.Start)
	last := truncateToDay(w.End)
	if last.Before(first) {
		return nil
	}
	days := make([]time.Time, 0, int(last.Sub(first)/(24*time.Hour))+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Span covers every day of the window, from the first midnight to the midnight after the
// last day. Calendar reads use it so that working hours on the final day see their events.
func (w Window) Span() (time.Time, time.Time) {
	return truncateToDay(w.Start), truncateToDay(w.End).AddDate(0, 0, 1)
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
