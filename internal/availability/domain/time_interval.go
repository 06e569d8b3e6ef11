package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInterval = errors.New("interval start must be before end")
)

// TimeInterval is an immutable half-open time range [start, end) in UTC.
type TimeInterval struct {
	start time.Time
	end   time.Time
}

// NewTimeInterval creates an interval. It fails when start is not strictly before end.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	if !start.Before(end) {
		return TimeInterval{}, fmt.Errorf("%w: %s >= %s", ErrInvalidInterval,
			start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	}
	return TimeInterval{start: start.UTC(), end: end.UTC()}, nil
}

// MustTimeInterval is NewTimeInterval for callers that have already checked start < end.
func MustTimeInterval(start, end time.Time) TimeInterval {
	ti, err := NewTimeInterval(start, end)
	if err != nil {
		panic(err)
	}
	return ti
}

func (ti TimeInterval) Start() time.Time { return ti.start }
func (ti TimeInterval) End() time.Time   { return ti.end }

// IsZero reports whether the interval is the zero value.
func (ti TimeInterval) IsZero() bool {
	return ti.start.IsZero() && ti.end.IsZero()
}

// Duration returns end - start.
func (ti TimeInterval) Duration() time.Duration {
	return ti.end.Sub(ti.start)
}

// DurationMinutes returns the whole minutes in the interval, truncating toward zero.
func (ti TimeInterval) DurationMinutes() int {
	return int(ti.Duration() / time.Minute)
}

// Overlaps reports whether the two intervals share any instant.
// Intervals that only touch at an endpoint do not overlap.
func (ti TimeInterval) Overlaps(other TimeInterval) bool {
	return ti.start.Before(other.end) && ti.end.After(other.start)
}

// Intersect returns the overlapping part of two intervals.
func (ti TimeInterval) Intersect(other TimeInterval) (TimeInterval, bool) {
	if !ti.Overlaps(other) {
		return TimeInterval{}, false
	}
	start := ti.start
	if other.start.After(start) {
		start = other.start
	}
	end := ti.end
	if other.end.Before(end) {
		end = other.end
	}
	return TimeInterval{start: start, end: end}, true
}

// Contains reports whether t falls within [start, end).
func (ti TimeInterval) Contains(t time.Time) bool {
	return !t.Before(ti.start) && t.Before(ti.end)
}

// Equal compares intervals by instant, ignoring monotonic clock readings.
func (ti TimeInterval) Equal(other TimeInterval) bool {
	return ti.start.Equal(other.start) && ti.end.Equal(other.end)
}

func (ti TimeInterval) String() string {
	return fmt.Sprintf("%s/%s", ti.start.Format(time.RFC3339), ti.end.Format(time.RFC3339))
}

type timeIntervalJSON struct {
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

// MarshalJSON encodes the interval as its reporting form.
func (ti TimeInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeIntervalJSON{
		StartTime:       ti.start.Format(time.RFC3339Nano),
		EndTime:         ti.end.Format(time.RFC3339Nano),
		DurationMinutes: ti.DurationMinutes(),
	})
}

// UnmarshalJSON decodes the reporting form. The stored duration is ignored and recomputed.
func (ti *TimeInterval) UnmarshalJSON(data []byte) error {
	var raw timeIntervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339Nano, raw.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start_time: %w", err)
	}
	end, err := time.Parse(time.RFC3339Nano, raw.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end_time: %w", err)
	}
	parsed, err := NewTimeInterval(start, end)
	if err != nil {
		return err
	}
	*ti = parsed
	return nil
}
