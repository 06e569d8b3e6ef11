// Package domain holds the building blocks shared by the bounded contexts.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate carries the identity, timestamps and unpublished events of an aggregate root.
// Embed it by value; the recording methods need a pointer receiver.
type Aggregate struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
	pending   []DomainEvent
}

// NewAggregate returns an aggregate with a fresh id, created now.
func NewAggregate() Aggregate {
	now := time.Now().UTC()
	return Aggregate{id: uuid.New(), createdAt: now, updatedAt: now}
}

// RehydrateAggregate restores an aggregate loaded from storage. It has no pending events.
func RehydrateAggregate(id uuid.UUID, createdAt, updatedAt time.Time) Aggregate {
	return Aggregate{id: id, createdAt: createdAt.UTC(), updatedAt: updatedAt.UTC()}
}

func (a Aggregate) ID() uuid.UUID        { return a.id }
func (a Aggregate) CreatedAt() time.Time { return a.createdAt }
func (a Aggregate) UpdatedAt() time.Time { return a.updatedAt }

// Touch moves UpdatedAt to now.
func (a *Aggregate) Touch() {
	a.updatedAt = time.Now().UTC()
}

// Record queues an event until the aggregate is saved.
func (a *Aggregate) Record(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// DomainEvents returns the events recorded since the last ClearDomainEvents.
func (a *Aggregate) DomainEvents() []DomainEvent {
	return append([]DomainEvent(nil), a.pending...)
}

// ClearDomainEvents drops the recorded events once they are in the outbox.
func (a *Aggregate) ClearDomainEvents() {
	a.pending = nil
}
