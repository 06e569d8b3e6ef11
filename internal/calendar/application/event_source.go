package application

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
)

var (
	// ErrSourceUnavailable is returned when a provider is known to be failing for a participant.
	ErrSourceUnavailable = errors.New("calendar source unavailable")
	// ErrNoCredentials is returned when a participant has not connected a calendar.
	ErrNoCredentials = errors.New("no calendar credentials for participant")
)

// EventSource reads a participant's calendar events overlapping [start, end).
type EventSource interface {
	ListEvents(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error)
}

// EventSourceFunc adapts a function to EventSource.
type EventSourceFunc func(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error)

func (f EventSourceFunc) ListEvents(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error) {
	return f(ctx, participantID, start, end)
}
