package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
)

// ProcessorConfig controls polling and the retry schedule of failed messages.
type ProcessorConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxRetries is the number of failed attempts after which a message is dead-lettered.
	MaxRetries int
	// A message that failed n times is retried after RetryBackoffBase * 2^(n-1),
	// capped at RetryBackoffMax.
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns the settings of a long-running relay.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// Stats is a snapshot of the processor's counters.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

// Processor relays outbox messages to the event bus. Messages are marked published only
// after the publisher accepted them, so delivery is at least once.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	metrics   observability.Metrics
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a stopped processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, metrics observability.Metrics, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	defaults := DefaultProcessorConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.RetryBackoffBase <= 0 {
		config.RetryBackoffBase = defaults.RetryBackoffBase
	}
	if config.RetryBackoffMax <= 0 {
		config.RetryBackoffMax = defaults.RetryBackoffMax
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start polls in the background until Stop is called or ctx ends. Starting a running
// processor does nothing.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.poll(runCtx, p.done)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
	return nil
}

// Stop ends polling and waits for the current batch to finish.
func (p *Processor) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("outbox processor stopped")
}

// IsRunning reports whether Start was called without a matching Stop.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Processor) poll(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.processBatch(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("failed to process outbox batch", observability.ErrorKey, err)
			}
		}
	}
}

// ProcessOnce relays a single batch.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	_, err := p.processBatch(ctx)
	return err
}

// Flush relays batches until fewer than a full batch is due. Failed messages are
// rescheduled into the future, so they cannot keep the loop alive.
func (p *Processor) Flush(ctx context.Context) error {
	for {
		n, err := p.processBatch(ctx)
		if err != nil {
			return err
		}
		if n < p.config.BatchSize {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// processBatch returns how many messages were due.
func (p *Processor) processBatch(ctx context.Context) (int, error) {
	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.record(func(s *Stats) { s.setError(err) })
		return 0, err
	}
	p.observeLag(messages)

	for _, msg := range messages {
		p.relay(ctx, msg)
	}
	return len(messages), nil
}

func (p *Processor) relay(ctx context.Context, msg *Message) {
	metadata := msg.Invocation()
	tag := observability.T("routing_key", msg.RoutingKey)

	// Publish under the correlation id of the command that wrote the message.
	pubCtx := ctx
	if metadata.CorrelationID != "" {
		pubCtx = observability.WithCorrelationID(ctx, metadata.CorrelationID)
	}

	if err := p.publisher.Publish(pubCtx, msg.RoutingKey, msg.Payload); err != nil {
		p.metrics.Counter(observability.MetricEventsPublishFailed, 1, tag)
		p.logger.Warn("failed to publish outbox message",
			"id", msg.ID,
			"event_id", msg.EventID,
			"routing_key", msg.RoutingKey,
			"attempt", msg.RetryCount+1,
			observability.CorrelationIDKey, metadata.CorrelationID,
			observability.ErrorKey, err,
		)
		p.reschedule(ctx, msg, err)
		return
	}

	if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
		// The message stays due and is published again on the next pass.
		p.logger.Error("failed to mark outbox message published", "id", msg.ID, observability.ErrorKey, err)
		return
	}
	p.metrics.Counter(observability.MetricEventsPublished, 1, tag)
	p.record(func(s *Stats) { s.PublishedCount++ })
}

func (p *Processor) reschedule(ctx context.Context, msg *Message, cause error) {
	attempts := msg.RetryCount + 1
	if p.config.MaxRetries <= 0 || attempts >= p.config.MaxRetries {
		p.metrics.Counter(observability.MetricEventsDeadLettered, 1, observability.T("routing_key", msg.RoutingKey))
		p.record(func(s *Stats) {
			s.DeadCount++
			s.setError(cause)
		})
		if err := p.repo.MarkDead(ctx, msg.ID, cause.Error()); err != nil {
			p.logger.Error("failed to dead-letter outbox message", "id", msg.ID, observability.ErrorKey, err)
		}
		return
	}

	p.record(func(s *Stats) {
		s.FailedCount++
		s.setError(cause)
	})
	next := time.Now().Add(p.retryBackoff(attempts))
	if err := p.repo.MarkFailed(ctx, msg.ID, cause.Error(), next); err != nil {
		p.logger.Error("failed to reschedule outbox message", "id", msg.ID, observability.ErrorKey, err)
	}
}

func (p *Processor) retryBackoff(attempts int) time.Duration {
	backoff := p.config.RetryBackoffBase
	for i := 1; i < attempts && backoff < p.config.RetryBackoffMax; i++ {
		backoff *= 2
	}
	return min(backoff, p.config.RetryBackoffMax)
}

func (p *Processor) observeLag(messages []*Message) {
	now := time.Now()
	var oldest *time.Time
	for _, msg := range messages {
		if oldest == nil || msg.CreatedAt.Before(*oldest) {
			created := msg.CreatedAt
			oldest = &created
		}
	}

	lag := 0.0
	if oldest != nil {
		lag = now.Sub(*oldest).Seconds()
	}
	p.metrics.Gauge(observability.MetricOutboxLag, lag)
	p.record(func(s *Stats) {
		s.LastProcessedAt = &now
		s.OldestMessageAt = oldest
		s.LagSeconds = lag
	})
}

// GetStats returns a snapshot of the counters.
func (p *Processor) GetStats() Stats {
	running := p.IsRunning()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	stats := p.stats
	stats.IsRunning = running
	return stats
}

func (p *Processor) record(update func(s *Stats)) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	update(&p.stats)
}

func (s *Stats) setError(err error) {
	now := time.Now()
	s.LastError = err.Error()
	s.LastErrorAt = &now
}
