package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/calcompare/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roster struct {
	domain.Aggregate
	name string
}

func newRoster(name string) *roster {
	r := &roster{Aggregate: domain.NewAggregate(), name: name}
	r.Record(rosterEvent(r.ID(), "roster.created"))
	return r
}

func rosterEvent(id uuid.UUID, key string) *domain.BaseEvent {
	event := domain.NewBaseEvent(id, "Roster", key)
	return &event
}

func TestNewAggregate(t *testing.T) {
	before := time.Now().UTC()
	r := newRoster("ops")

	assert.NotEqual(t, uuid.Nil, r.ID())
	assert.False(t, r.CreatedAt().Before(before))
	assert.Equal(t, r.CreatedAt(), r.UpdatedAt())
	require.Len(t, r.DomainEvents(), 1)
	assert.Equal(t, r.ID(), r.DomainEvents()[0].AggregateID())
}

func TestAggregate_RecordAndClear(t *testing.T) {
	r := newRoster("ops")
	r.Record(rosterEvent(r.ID(), "roster.renamed"))

	events := r.DomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "roster.created", events[0].RoutingKey())
	assert.Equal(t, "roster.renamed", events[1].RoutingKey())

	// The returned slice is a copy.
	events[0] = nil
	assert.NotNil(t, r.DomainEvents()[0])

	r.ClearDomainEvents()
	assert.Empty(t, r.DomainEvents())
}

func TestRehydrateAggregate(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, time.June, 3, 10, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	updated := created.Add(time.Hour)

	a := domain.RehydrateAggregate(id, created, updated)

	assert.Equal(t, id, a.ID())
	assert.Equal(t, time.UTC, a.CreatedAt().Location())
	assert.True(t, a.UpdatedAt().Equal(updated))
	assert.Empty(t, a.DomainEvents())
}

func TestAggregate_Touch(t *testing.T) {
	a := domain.RehydrateAggregate(uuid.New(), time.Now().Add(-time.Hour), time.Now().Add(-time.Hour))
	before := a.UpdatedAt()

	a.Touch()

	assert.True(t, a.UpdatedAt().After(before))
}
