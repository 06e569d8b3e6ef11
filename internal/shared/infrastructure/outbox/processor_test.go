package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingPublisher rejects the configured routing keys and delegates the rest.
type failingPublisher struct {
	*eventbus.InMemoryPublisher
	mu   sync.Mutex
	fail map[string]bool
}

func newFailingPublisher(keys ...string) *failingPublisher {
	p := &failingPublisher{InMemoryPublisher: eventbus.NewInMemoryPublisher(), fail: map[string]bool{}}
	for _, k := range keys {
		p.fail[k] = true
	}
	return p
}

func (p *failingPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	fail := p.fail[routingKey]
	p.mu.Unlock()
	if fail {
		return errors.New("broker unavailable")
	}
	return p.InMemoryPublisher.Publish(ctx, routingKey, payload)
}

func createTestMessage(routingKey string) *outbox.Message {
	return &outbox.Message{
		EventID:       uuid.New(),
		AggregateType: "Group",
		AggregateID:   uuid.New(),
		EventType:     routingKey,
		RoutingKey:    routingKey,
		Payload:       []byte(`{"name":"Platform"}`),
		CreatedAt:     time.Now().UTC(),
	}
}

func TestProcessor_ProcessOnce(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	publisher := eventbus.NewInMemoryPublisher()
	metrics := observability.NewInMemoryMetrics()
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), metrics, nil)

	require.NoError(t, repo.Save(ctx, createTestMessage("groups.group.created")))
	require.NoError(t, repo.Save(ctx, createTestMessage("groups.member.added")))

	require.NoError(t, processor.ProcessOnce(ctx))

	published := publisher.Messages()
	require.Len(t, published, 2)
	assert.Equal(t, "groups.group.created", published[0].RoutingKey)
	assert.Equal(t, "groups.member.added", published[1].RoutingKey)
	for _, msg := range repo.Messages() {
		assert.True(t, msg.IsPublished())
	}

	stats := processor.GetStats()
	assert.Equal(t, uint64(2), stats.PublishedCount)
	assert.NotNil(t, stats.LastProcessedAt)
	assert.NotNil(t, stats.OldestMessageAt)
	assert.GreaterOrEqual(t, stats.LagSeconds, 0.0)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsPublished, observability.T("routing_key", "groups.group.created")))
}

func TestProcessor_ProcessOnce_PublishFailure(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	publisher := newFailingPublisher("groups.member.removed")
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), nil, nil)

	ok := createTestMessage("groups.member.added")
	bad := createTestMessage("groups.member.removed")
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{ok, bad}))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Len(t, publisher.Messages(), 1)
	assert.True(t, ok.IsPublished())
	assert.False(t, bad.IsPublished())
	assert.Equal(t, 1, bad.RetryCount)
	require.NotNil(t, bad.LastError)
	assert.Equal(t, "broker unavailable", *bad.LastError)
	require.NotNil(t, bad.NextRetryAt)
	assert.True(t, bad.NextRetryAt.After(time.Now()))

	stats := processor.GetStats()
	assert.Equal(t, uint64(1), stats.PublishedCount)
	assert.Equal(t, uint64(1), stats.FailedCount)
	assert.NotNil(t, stats.LastErrorAt)

	// Rescheduled messages are not due yet.
	require.NoError(t, processor.ProcessOnce(ctx))
	assert.Equal(t, 1, bad.RetryCount)
}

func TestProcessor_ProcessOnce_DeadLettersAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	publisher := newFailingPublisher("groups.member.removed")
	metrics := observability.NewInMemoryMetrics()
	config := outbox.DefaultProcessorConfig()
	config.MaxRetries = 1
	processor := outbox.NewProcessor(repo, publisher, config, metrics, nil)

	msg := createTestMessage("groups.member.removed")
	require.NoError(t, repo.Save(ctx, msg))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Empty(t, publisher.Messages())
	assert.NotNil(t, msg.DeadLetteredAt)
	require.NotNil(t, msg.DeadLetterReason)
	assert.Equal(t, uint64(1), processor.GetStats().DeadCount)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsDeadLettered, observability.T("routing_key", "groups.member.removed")))
}

func TestProcessor_Flush(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	publisher := eventbus.NewInMemoryPublisher()
	config := outbox.DefaultProcessorConfig()
	config.BatchSize = 2
	processor := outbox.NewProcessor(repo, publisher, config, nil, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, createTestMessage("groups.member.added")))
	}

	require.NoError(t, processor.Flush(ctx))

	assert.Len(t, publisher.Messages(), 5)
	unpublished, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, unpublished)
}

func TestProcessor_Flush_StopsOnFailures(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	publisher := newFailingPublisher("groups.member.added")
	config := outbox.DefaultProcessorConfig()
	config.BatchSize = 1
	processor := outbox.NewProcessor(repo, publisher, config, nil, nil)

	require.NoError(t, repo.Save(ctx, createTestMessage("groups.member.added")))
	require.NoError(t, repo.Save(ctx, createTestMessage("groups.member.added")))

	require.NoError(t, processor.Flush(ctx))

	assert.Equal(t, uint64(2), processor.GetStats().FailedCount)
}

func TestProcessor_StartStop(t *testing.T) {
	repo := outbox.NewInMemoryRepository()
	publisher := eventbus.NewInMemoryPublisher()
	config := outbox.ProcessorConfig{
		PollInterval:     10 * time.Millisecond,
		BatchSize:        10,
		MaxRetries:       3,
		RetryBackoffBase: 1 * time.Millisecond,
		RetryBackoffMax:  10 * time.Millisecond,
	}
	processor := outbox.NewProcessor(repo, publisher, config, nil, nil)

	require.NoError(t, processor.Start(context.Background()))
	assert.True(t, processor.IsRunning())
	assert.True(t, processor.GetStats().IsRunning)

	require.NoError(t, repo.Save(context.Background(), createTestMessage("groups.group.created")))

	assert.Eventually(t, func() bool {
		return len(publisher.Messages()) == 1
	}, time.Second, 5*time.Millisecond)

	processor.Stop()
	processor.Stop()
	assert.False(t, processor.IsRunning())
}

func TestProcessor_DoubleStart(t *testing.T) {
	processor := outbox.NewProcessor(outbox.NewInMemoryRepository(), eventbus.NewNoopPublisher(nil), outbox.DefaultProcessorConfig(), nil, nil)

	require.NoError(t, processor.Start(context.Background()))
	require.NoError(t, processor.Start(context.Background()))

	processor.Stop()
}

type correlationRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *correlationRecorder) Publish(ctx context.Context, routingKey string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, observability.CorrelationIDFromContext(ctx))
	return nil
}

func (r *correlationRecorder) Close() error { return nil }

func TestProcessor_PublishesUnderStoredCorrelationID(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	recorder := &correlationRecorder{}
	metrics := observability.NewInMemoryMetrics()
	processor := outbox.NewProcessor(repo, recorder, outbox.DefaultProcessorConfig(), metrics, nil)

	tagged := createTestMessage("groups.group.created")
	tagged.Metadata = []byte(`{"correlation_id":"corr-42","request_id":"req-1"}`)
	require.NoError(t, repo.Save(ctx, tagged))
	require.NoError(t, repo.Save(ctx, createTestMessage("groups.member.added")))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Equal(t, []string{"corr-42", ""}, recorder.ids)
	assert.GreaterOrEqual(t, metrics.GetGauge(observability.MetricOutboxLag), 0.0)
}

func TestProcessor_BackoffDoublesUpToMax(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	config := outbox.ProcessorConfig{
		BatchSize:        10,
		MaxRetries:       10,
		RetryBackoffBase: time.Minute,
		RetryBackoffMax:  3 * time.Minute,
	}
	processor := outbox.NewProcessor(repo, newFailingPublisher("groups.member.added"), config, nil, nil)

	msg := createTestMessage("groups.member.added")
	msg.RetryCount = 3
	require.NoError(t, repo.Save(ctx, msg))

	before := time.Now()
	require.NoError(t, processor.ProcessOnce(ctx))

	require.NotNil(t, msg.NextRetryAt)
	delay := msg.NextRetryAt.Sub(before)
	assert.GreaterOrEqual(t, delay, 3*time.Minute)
	assert.Less(t, delay, 3*time.Minute+5*time.Second)
}
