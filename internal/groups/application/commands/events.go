package commands

import (
	"context"

	"github.com/felixgeelhaar/calcompare/internal/groups/domain"
	sharedApplication "github.com/felixgeelhaar/calcompare/internal/shared/application"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/outbox"
)

// saveWithEvents persists the group and queues its pending events in the same transaction.
func saveWithEvents(txCtx context.Context, repo domain.Repository, outboxRepo outbox.Repository, group *domain.Group) error {
	if err := repo.Save(txCtx, group); err != nil {
		return err
	}

	events := group.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.EventMetadataFromContext(txCtx))

	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	if err := outboxRepo.SaveBatch(txCtx, msgs); err != nil {
		return err
	}
	group.ClearDomainEvents()
	return nil
}
