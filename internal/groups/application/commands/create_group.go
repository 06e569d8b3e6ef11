package commands

import (
	"context"

	"github.com/felixgeelhaar/calcompare/internal/groups/domain"
	sharedApplication "github.com/felixgeelhaar/calcompare/internal/shared/application"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CreateGroupCommand contains the data needed to create a group.
type CreateGroupCommand struct {
	Name string
}

// CreateGroupResult contains the result of creating a group.
type CreateGroupResult struct {
	GroupID uuid.UUID
}

// CreateGroupHandler handles the CreateGroupCommand.
type CreateGroupHandler struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateGroupHandler creates a new CreateGroupHandler.
func NewCreateGroupHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateGroupHandler {
	return &CreateGroupHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreateGroupCommand.
func (h *CreateGroupHandler) Handle(ctx context.Context, cmd CreateGroupCommand) (*CreateGroupResult, error) {
	var result *CreateGroupResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		group, err := domain.NewGroup(cmd.Name)
		if err != nil {
			return err
		}
		if err := saveWithEvents(txCtx, h.repo, h.outboxRepo, group); err != nil {
			return err
		}
		result = &CreateGroupResult{GroupID: group.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
