package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the per-participant circuit breakers.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens a breaker.
	FailureThreshold uint32
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
	// Interval clears the counts of a closed breaker. Zero never clears them.
	Interval time.Duration
	// Timeout is how long a breaker stays open.
	Timeout time.Duration
}

// DefaultBreakerConfig returns the breaker settings used by the CLI.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// BreakerSource stops calling a participant's calendar after repeated failures.
// While a breaker is open the participant fails fast with ErrSourceUnavailable.
type BreakerSource struct {
	next    calendarApp.EventSource
	config  BreakerConfig
	metrics observability.Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]domain.CalendarEvent]
}

var _ calendarApp.EventSource = (*BreakerSource)(nil)

// NewBreakerSource wraps next.
func NewBreakerSource(next calendarApp.EventSource, config BreakerConfig, metrics observability.Metrics, logger *slog.Logger) *BreakerSource {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	return &BreakerSource{
		next:     next,
		config:   config,
		metrics:  metrics,
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]domain.CalendarEvent]),
	}
}

// ListEvents fetches through the participant's breaker.
func (s *BreakerSource) ListEvents(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error) {
	breaker := s.breaker(participantID)

	events, err := breaker.Execute(func() ([]domain.CalendarEvent, error) {
		return s.next.ListEvents(ctx, participantID, start, end)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.metrics.Counter(observability.MetricBreakerRejected, 1, observability.T("participant_id", participantID))
		return nil, fmt.Errorf("%w: %s: %v", calendarApp.ErrSourceUnavailable, participantID, err)
	}
	return events, err
}

// State returns the breaker state of a participant, "closed" when none exists yet.
func (s *BreakerSource) State(participantID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if breaker, ok := s.breakers[participantID]; ok {
		return breaker.State().String()
	}
	return gobreaker.StateClosed.String()
}

// Reset forgets the breaker of a participant.
func (s *BreakerSource) Reset(participantID string) {
	s.mu.Lock()
	delete(s.breakers, participantID)
	s.mu.Unlock()

	s.logger.Info("circuit breaker reset", "participant_id", participantID)
}

func (s *BreakerSource) breaker(participantID string) *gobreaker.CircuitBreaker[[]domain.CalendarEvent] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if breaker, ok := s.breakers[participantID]; ok {
		return breaker
	}

	settings := gobreaker.Settings{
		Name:        participantID,
		MaxRequests: s.config.MaxRequests,
		Interval:    s.config.Interval,
		Timeout:     s.config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// Missing credentials and caller cancellation say nothing about the provider.
			return err == nil ||
				errors.Is(err, calendarApp.ErrNoCredentials) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Info("circuit breaker state changed",
				"participant_id", name,
				"from", from.String(),
				"to", to.String(),
			)
			s.metrics.Counter(observability.MetricBreakerStateChange, 1,
				observability.T("participant_id", name),
				observability.T("to", to.String()),
			)
		},
	}

	breaker := gobreaker.NewCircuitBreaker[[]domain.CalendarEvent](settings)
	s.breakers[participantID] = breaker
	return breaker
}
