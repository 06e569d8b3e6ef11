// Package resilience wraps event sources with retries and per-participant circuit breakers.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"
	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
)

// RetryConfig controls how often a failed fetch is repeated.
type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultRetryConfig returns the retry settings used by the CLI.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: 3,
		Delay:    200 * time.Millisecond,
		MaxDelay: 2 * time.Second,
	}
}

// RetrySource repeats transient ListEvents failures with full-jitter backoff.
type RetrySource struct {
	next   calendarApp.EventSource
	config RetryConfig
	logger *slog.Logger
}

var _ calendarApp.EventSource = (*RetrySource)(nil)

// NewRetrySource wraps next.
func NewRetrySource(next calendarApp.EventSource, config RetryConfig, logger *slog.Logger) *RetrySource {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Attempts == 0 {
		config.Attempts = 1
	}
	return &RetrySource{next: next, config: config, logger: logger}
}

// ListEvents calls the wrapped source until it succeeds, fails permanently or runs out of attempts.
func (s *RetrySource) ListEvents(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error) {
	var events []domain.CalendarEvent

	err := retry.Do(
		func() error {
			result, err := s.next.ListEvents(ctx, participantID, start, end)
			if err != nil {
				if permanent(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			events = result
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.config.Attempts),
		retry.Delay(s.config.Delay),
		retry.MaxDelay(s.config.MaxDelay),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug("retrying calendar fetch",
				"participant_id", participantID,
				"attempt", n+1,
				"error", err,
			)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// permanent reports errors that another attempt cannot fix.
func permanent(err error) bool {
	return errors.Is(err, calendarApp.ErrNoCredentials) ||
		errors.Is(err, calendarApp.ErrSourceUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
