package commands

import (
	"context"

	"github.com/felixgeelhaar/calcompare/internal/groups/domain"
	sharedApplication "github.com/felixgeelhaar/calcompare/internal/shared/application"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RemoveMemberCommand removes a member from a group. The member record itself is kept.
type RemoveMemberCommand struct {
	GroupID  uuid.UUID
	MemberID uuid.UUID
}

// RemoveMemberHandler handles the RemoveMemberCommand.
type RemoveMemberHandler struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewRemoveMemberHandler creates a new RemoveMemberHandler.
func NewRemoveMemberHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *RemoveMemberHandler {
	return &RemoveMemberHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the RemoveMemberCommand.
func (h *RemoveMemberHandler) Handle(ctx context.Context, cmd RemoveMemberCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		group, err := h.repo.FindByID(txCtx, cmd.GroupID)
		if err != nil {
			return err
		}
		if err := group.RemoveMember(cmd.MemberID); err != nil {
			return err
		}
		return saveWithEvents(txCtx, h.repo, h.outboxRepo, group)
	})
}
