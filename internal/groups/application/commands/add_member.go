package commands

import (
	"context"

	"github.com/felixgeelhaar/calcompare/internal/groups/domain"
	sharedApplication "github.com/felixgeelhaar/calcompare/internal/shared/application"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// AddMemberCommand adds a member to a group. A non-nil MemberID re-uses an
// existing member (so one person can sit in several groups); otherwise a new
// member is created from Name and Email.
type AddMemberCommand struct {
	GroupID  uuid.UUID
	MemberID uuid.UUID
	Name     string
	Email    string
}

// AddMemberResult contains the id of the added member.
type AddMemberResult struct {
	MemberID uuid.UUID
}

// AddMemberHandler handles the AddMemberCommand.
type AddMemberHandler struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewAddMemberHandler creates a new AddMemberHandler.
func NewAddMemberHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *AddMemberHandler {
	return &AddMemberHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the AddMemberCommand.
func (h *AddMemberHandler) Handle(ctx context.Context, cmd AddMemberCommand) (*AddMemberResult, error) {
	var result *AddMemberResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		group, err := h.repo.FindByID(txCtx, cmd.GroupID)
		if err != nil {
			return err
		}

		member, err := h.resolveMember(txCtx, cmd)
		if err != nil {
			return err
		}
		if err := group.AddMember(member); err != nil {
			return err
		}
		if err := saveWithEvents(txCtx, h.repo, h.outboxRepo, group); err != nil {
			return err
		}
		result = &AddMemberResult{MemberID: member.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (h *AddMemberHandler) resolveMember(ctx context.Context, cmd AddMemberCommand) (domain.Member, error) {
	if cmd.MemberID == uuid.Nil {
		return domain.NewMember(cmd.Name, cmd.Email)
	}
	existing, err := h.repo.FindMember(ctx, cmd.MemberID)
	if err != nil {
		return domain.Member{}, err
	}
	return *existing, nil
}
