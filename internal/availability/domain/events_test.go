package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/calcompare/internal/availability/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParticipantDegraded(t *testing.T) {
	groupID := uuid.New()

	event := domain.NewParticipantDegraded(groupID, "user-1", "timeout")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, groupID, event.AggregateID())
	assert.Equal(t, "Availability", event.AggregateType())
	assert.Equal(t, domain.RoutingKeyParticipantDegraded, event.RoutingKey())
	assert.Equal(t, domain.ParticipantID("user-1"), event.ParticipantID)
}

func TestParticipantDegraded_JSON(t *testing.T) {
	groupID := uuid.New()
	event := domain.NewParticipantDegraded(groupID, "user-1", "timeout")

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, event.EventID().String(), payload["event_id"])
	assert.Equal(t, groupID.String(), payload["aggregate_id"])
	assert.Equal(t, "availability.participant.degraded", payload["routing_key"])
	assert.Equal(t, "user-1", payload["participant_id"])
	assert.Equal(t, "timeout", payload["reason"])
	assert.Contains(t, payload, "occurred_at")
}
