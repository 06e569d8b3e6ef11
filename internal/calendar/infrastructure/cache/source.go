package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
)

// CachedSource serves repeated fetches of the same participant and window from a Store.
// Only successful fetches are stored. A failing store never fails a fetch.
type CachedSource struct {
	next    calendarApp.EventSource
	store   Store
	metrics observability.Metrics
	logger  *slog.Logger
}

var _ calendarApp.EventSource = (*CachedSource)(nil)

// NewCachedSource wraps next.
func NewCachedSource(next calendarApp.EventSource, store Store, metrics observability.Metrics, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &CachedSource{next: next, store: store, metrics: metrics, logger: logger}
}

// Key identifies a participant's window.
func Key(participantID string, start, end time.Time) string {
	return participantID + "|" + start.UTC().Format(time.RFC3339) + "|" + end.UTC().Format(time.RFC3339)
}

// ListEvents returns cached events when present, otherwise fetches and stores them.
func (s *CachedSource) ListEvents(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error) {
	key := Key(participantID, start, end)

	if data, ok, err := s.store.Get(ctx, key); err != nil {
		s.logger.Warn("event cache read failed", "participant_id", participantID, "error", err)
	} else if ok {
		var events []domain.CalendarEvent
		if err := json.Unmarshal(data, &events); err == nil {
			s.metrics.Counter(observability.MetricEventCacheHits, 1)
			return events, nil
		}
		s.logger.Warn("discarding undecodable cache entry", "participant_id", participantID)
	}
	s.metrics.Counter(observability.MetricEventCacheMisses, 1)

	events, err := s.next.ListEvents(ctx, participantID, start, end)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(events)
	if err != nil {
		s.logger.Warn("failed to encode events for cache", "participant_id", participantID, "error", err)
		return events, nil
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		s.logger.Warn("event cache write failed", "participant_id", participantID, "error", err)
	}
	return events, nil
}
