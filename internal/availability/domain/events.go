package domain

import (
	"encoding/json"
	"time"

	sharedDomain "github.com/felixgeelhaar/calcompare/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	aggregateType = "Availability"

	// RoutingKeyParticipantDegraded is published when a participant is assumed free.
	RoutingKeyParticipantDegraded = "availability.participant.degraded"
)

// ParticipantDegraded records that a participant's calendar could not be read during a computation.
type ParticipantDegraded struct {
	sharedDomain.BaseEvent
	ParticipantID ParticipantID
	Reason        string
}

// NewParticipantDegraded creates the event. aggregateID is the group, or the user for individual queries.
func NewParticipantDegraded(aggregateID uuid.UUID, participant ParticipantID, reason string) *ParticipantDegraded {
	return &ParticipantDegraded{
		BaseEvent:     sharedDomain.NewBaseEvent(aggregateID, aggregateType, RoutingKeyParticipantDegraded),
		ParticipantID: participant,
		Reason:        reason,
	}
}

type participantDegradedJSON struct {
	EventID       uuid.UUID `json:"event_id"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	AggregateType string    `json:"aggregate_type"`
	RoutingKey    string    `json:"routing_key"`
	OccurredAt    time.Time `json:"occurred_at"`
	ParticipantID string    `json:"participant_id"`
	Reason        string    `json:"reason"`
}

// MarshalJSON emits the envelope fields alongside the payload.
func (e *ParticipantDegraded) MarshalJSON() ([]byte, error) {
	return json.Marshal(participantDegradedJSON{
		EventID:       e.EventID(),
		AggregateID:   e.AggregateID(),
		AggregateType: e.AggregateType(),
		RoutingKey:    e.RoutingKey(),
		OccurredAt:    e.OccurredAt(),
		ParticipantID: string(e.ParticipantID),
		Reason:        e.Reason,
	})
}
