package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/calcompare/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	before := time.Now().UTC()

	event := domain.NewBaseEvent(aggregateID, "Group", "groups.group.created")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "Group", event.AggregateType())
	assert.Equal(t, "groups.group.created", event.RoutingKey())
	assert.False(t, event.OccurredAt().Before(before))
	assert.True(t, event.Metadata().IsZero())
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	event := domain.NewBaseEvent(uuid.New(), "Group", "groups.member.added")

	event.SetMetadata(domain.EventMetadata{CorrelationID: "corr-1", RequestID: "req-1"})

	assert.Equal(t, "corr-1", event.Metadata().CorrelationID)
	assert.Equal(t, "req-1", event.Metadata().RequestID)
	assert.False(t, event.Metadata().IsZero())
}
