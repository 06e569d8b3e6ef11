package application

import (
	"context"

	"github.com/felixgeelhaar/calcompare/internal/shared/domain"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// EventMetadataFromContext copies the correlation and request ids of the current
// invocation so that published events can be traced back to the command that caused them.
func EventMetadataFromContext(ctx context.Context) domain.EventMetadata {
	return domain.EventMetadata{
		CorrelationID: observability.CorrelationIDFromContext(ctx),
		RequestID:     observability.RequestIDFromContext(ctx),
	}
}

// ApplyEventMetadata sets metadata on every event that accepts it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
