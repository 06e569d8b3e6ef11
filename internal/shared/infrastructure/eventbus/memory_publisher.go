package eventbus

import (
	"context"
	"sync"
)

// PublishedMessage is a message captured by InMemoryPublisher.
type PublishedMessage struct {
	RoutingKey string
	Payload    []byte
}

// InMemoryPublisher records published messages in order.
type InMemoryPublisher struct {
	mu       sync.Mutex
	messages []PublishedMessage
	closed   bool
}

var _ Publisher = (*InMemoryPublisher)(nil)

// NewInMemoryPublisher creates an empty recorder.
func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

// Publish records the message. The payload is copied.
func (p *InMemoryPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, PublishedMessage{
		RoutingKey: routingKey,
		Payload:    append([]byte(nil), payload...),
	})
	return nil
}

// Messages returns a snapshot of everything published so far.
func (p *InMemoryPublisher) Messages() []PublishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedMessage(nil), p.messages...)
}

// MessagesFor returns the messages published under routingKey.
func (p *InMemoryPublisher) MessagesFor(routingKey string) []PublishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []PublishedMessage
	for _, m := range p.messages {
		if m.RoutingKey == routingKey {
			out = append(out, m)
		}
	}
	return out
}

// Closed reports whether Close was called.
func (p *InMemoryPublisher) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close marks the publisher closed.
func (p *InMemoryPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
