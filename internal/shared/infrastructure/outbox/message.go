package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/calcompare/internal/shared/domain"
)

// Status is where a message stands in the relay.
type Status string

const (
	StatusPending      Status = "pending"
	StatusPublished    Status = "published"
	StatusDeadLettered Status = "dead_lettered"
)

// Message is a domain event stored in the outbox table alongside the
// aggregate change that raised it.
type Message struct {
	ID            int64
	EventID       uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	RoutingKey    string
	Payload       json.RawMessage
	// Metadata holds the encoded domain.EventMetadata of the writing command.
	Metadata  json.RawMessage
	CreatedAt time.Time

	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage encodes event and its invocation metadata.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event.RoutingKey(), err)
	}
	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, fmt.Errorf("encode %s metadata: %w", event.RoutingKey(), err)
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.RoutingKey(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// NewMessages encodes events in order and stops at the first failure.
func NewMessages(events []domain.DomainEvent) ([]*Message, error) {
	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Status derives the relay state from the timestamps.
func (m *Message) Status() Status {
	switch {
	case m.PublishedAt != nil:
		return StatusPublished
	case m.DeadLetteredAt != nil:
		return StatusDeadLettered
	default:
		return StatusPending
	}
}

func (m *Message) IsPublished() bool {
	return m.Status() == StatusPublished
}

// Due reports whether a pending message may be relayed at now.
func (m *Message) Due(now time.Time) bool {
	if m.Status() != StatusPending {
		return false
	}
	return m.NextRetryAt == nil || !m.NextRetryAt.After(now)
}

// CanRetry reports whether another attempt stays within maxRetries.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}

// Invocation decodes the correlation and request ids stored with the message.
// Missing or unreadable metadata yields the zero value.
func (m *Message) Invocation() domain.EventMetadata {
	var metadata domain.EventMetadata
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &metadata)
	}
	return metadata
}
