// Package static serves participant calendars from a JSON fixture.
package static

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/security"
)

// Source is an in-memory EventSource keyed by participant id.
// Participants missing from the fixture have no credentials.
type Source struct {
	events map[string][]domain.CalendarEvent
}

var _ calendarApp.EventSource = (*Source)(nil)

// NewSource creates a source from already decoded events. The map is copied.
func NewSource(events map[string][]domain.CalendarEvent) *Source {
	owned := make(map[string][]domain.CalendarEvent, len(events))
	for id, list := range events {
		owned[id] = append([]domain.CalendarEvent(nil), list...)
	}
	return &Source{events: owned}
}

// LoadFile reads a fixture of the form {"participant-id": [event, ...]}.
func LoadFile(path string) (*Source, error) {
	data, err := security.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar fixture: %w", err)
	}
	var events map[string][]domain.CalendarEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to decode calendar fixture %s: %w", path, err)
	}
	return NewSource(events), nil
}

// ListEvents returns the participant's events overlapping [start, end).
func (s *Source) ListEvents(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, ok := s.events[participantID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", calendarApp.ErrNoCredentials, participantID)
	}
	out := make([]domain.CalendarEvent, 0, len(list))
	for _, e := range list {
		if e.Overlaps(start, end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Participants returns the ids present in the fixture, sorted.
func (s *Source) Participants() []string {
	ids := make([]string, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
