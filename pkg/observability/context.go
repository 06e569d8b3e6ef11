package observability

import (
	"context"

	"github.com/google/uuid"
)

// Attribute keys shared by logs, metrics and outbox headers.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	OperationKey     = "operation"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
	GroupIDKey       = "group_id"
	ParticipantIDKey = "participant_id"
	TraceIDKey       = "trace_id"
	SpanIDKey        = "span_id"
)

type idsKey struct{}

// requestIDs travel together so that setting one keeps the other.
type requestIDs struct {
	correlation string
	request     string
}

func idsFrom(ctx context.Context) requestIDs {
	if ctx == nil {
		return requestIDs{}
	}
	ids, _ := ctx.Value(idsKey{}).(requestIDs)
	return ids
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// WithCorrelationID tags ctx with id, or a fresh UUID when id is empty.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	ids := idsFrom(ctx)
	ids.correlation = orNewID(id)
	return context.WithValue(ctx, idsKey{}, ids)
}

// CorrelationIDFromContext returns the correlation id, or "" when unset.
func CorrelationIDFromContext(ctx context.Context) string {
	return idsFrom(ctx).correlation
}

// WithRequestID tags ctx with id, or a fresh UUID when id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	ids := idsFrom(ctx)
	ids.request = orNewID(id)
	return context.WithValue(ctx, idsKey{}, ids)
}

// RequestIDFromContext returns the request id, or "" when unset.
func RequestIDFromContext(ctx context.Context) string {
	return idsFrom(ctx).request
}

// NewRequestContext starts a request: a fresh request id under
// parentCorrelationID, which is generated when empty.
func NewRequestContext(ctx context.Context, parentCorrelationID string) context.Context {
	ids := requestIDs{
		correlation: orNewID(parentCorrelationID),
		request:     uuid.NewString(),
	}
	return context.WithValue(ctx, idsKey{}, ids)
}
