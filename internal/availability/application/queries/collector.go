package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/calcompare/internal/availability/domain"
	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
	"golang.org/x/sync/errgroup"
)

// CollectorConfig bounds how participant calendars are read.
type CollectorConfig struct {
	Concurrency int
	Timeout     time.Duration
}

// DefaultCollectorConfig reads eight calendars at a time with a 15 second budget each.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{Concurrency: 8, Timeout: 15 * time.Second}
}

// Collected is the outcome of reading one participant's calendar.
type Collected struct {
	Data     domain.ParticipantData
	Skipped  int
	Warnings []string
}

// ParticipantCollector fetches busy times for many participants concurrently.
// A participant whose calendar cannot be read is returned as degraded, never as an error.
type ParticipantCollector struct {
	source  calendarApp.EventSource
	config  CollectorConfig
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewParticipantCollector creates a collector. Zero config values fall back to the defaults.
func NewParticipantCollector(source calendarApp.EventSource, config CollectorConfig, metrics observability.Metrics, logger *slog.Logger) *ParticipantCollector {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	defaults := DefaultCollectorConfig()
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	return &ParticipantCollector{source: source, config: config, metrics: metrics, logger: logger}
}

// Collect reads every participant's events overlapping [start, end) and derives busy times.
// Results are in input order.
func (c *ParticipantCollector) Collect(ctx context.Context, ids []domain.ParticipantID, start, end time.Time) []Collected {
	results := make([]Collected, len(ids))

	var g errgroup.Group
	g.SetLimit(c.config.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = c.collectOne(ctx, id, start, end)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *ParticipantCollector) collectOne(ctx context.Context, id domain.ParticipantID, start, end time.Time) Collected {
	fetchCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	began := time.Now()
	events, err := c.source.ListEvents(fetchCtx, string(id), start, end)
	c.metrics.Timing(observability.MetricCalendarFetchDuration, time.Since(began))

	if err != nil {
		c.metrics.Counter(observability.MetricCalendarFetches, 1, observability.T("outcome", "error"))
		c.logger.WarnContext(ctx, "calendar unavailable, assuming participant is free",
			observability.ParticipantIDKey, string(id),
			observability.ErrorKey, err,
		)
		return Collected{Data: domain.Degraded(id, err.Error())}
	}
	c.metrics.Counter(observability.MetricCalendarFetches, 1, observability.T("outcome", "ok"))

	busy := calendarApp.BusyTimes(events)
	for _, warning := range busy.Warnings {
		c.logger.WarnContext(ctx, "calendar event skipped",
			observability.ParticipantIDKey, string(id),
			"warning", warning,
		)
	}
	if busy.Skipped > 0 {
		c.metrics.Counter(observability.MetricEventsSkipped, int64(busy.Skipped))
	}

	return Collected{
		Data:     domain.Available(id, busy.Busy, len(events)),
		Skipped:  busy.Skipped,
		Warnings: busy.Warnings,
	}
}
