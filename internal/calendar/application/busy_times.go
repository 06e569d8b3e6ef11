package application

import (
	"fmt"

	availability "github.com/felixgeelhaar/calcompare/internal/availability/domain"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
)

// BusyResult is the busy time derived from a participant's events.
type BusyResult struct {
	Busy     []availability.TimeInterval
	Excluded int
	Skipped  int
	Warnings []string
}

// BusyTimes converts events into busy intervals.
// Cancelled and all-day events are excluded. Events whose start or end cannot be parsed,
// or that end before they start, are skipped and described in Warnings.
func BusyTimes(events []domain.CalendarEvent) BusyResult {
	result := BusyResult{Busy: make([]availability.TimeInterval, 0, len(events))}

	for _, event := range events {
		if event.IsCancelled() || event.IsAllDay() {
			result.Excluded++
			continue
		}

		start, err := event.Start.Instant()
		if err != nil {
			result.skip(event.ID, fmt.Errorf("start: %w", err))
			continue
		}
		end, err := event.End.Instant()
		if err != nil {
			result.skip(event.ID, fmt.Errorf("end: %w", err))
			continue
		}
		interval, err := availability.NewTimeInterval(start, end)
		if err != nil {
			result.skip(event.ID, err)
			continue
		}
		result.Busy = append(result.Busy, interval)
	}

	return result
}

func (r *BusyResult) skip(eventID string, err error) {
	r.Skipped++
	r.Warnings = append(r.Warnings, fmt.Sprintf("event %s skipped: %v", eventID, err))
}
