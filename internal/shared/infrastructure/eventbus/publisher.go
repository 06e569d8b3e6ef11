// Package eventbus delivers domain events to a message broker.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/calcompare/internal/shared/domain"
)

// Publisher sends encoded events to the broker. Publish returns once the
// broker has accepted the message.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// PublishEvent sends event directly, bypassing the outbox. Query handlers use
// it for availability events that have no transaction to join.
func PublishEvent(ctx context.Context, publisher Publisher, event domain.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.RoutingKey(), err)
	}
	return publisher.Publish(ctx, event.RoutingKey(), payload)
}
