package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans created by calcompare.
const TracerName = "github.com/felixgeelhaar/calcompare"

// Span attribute keys.
const (
	SpanAttrGroupID       = "calcompare.group_id"
	SpanAttrUserID        = "calcompare.user_id"
	SpanAttrParticipants  = "calcompare.participants"
	SpanAttrDegraded      = "calcompare.participants_degraded"
	SpanAttrSlots         = "calcompare.slots"
	SpanAttrParticipantID = "calcompare.participant_id"
)

// StartSpan starts a span on the global tracer provider.
// The caller ends it with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on the span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
