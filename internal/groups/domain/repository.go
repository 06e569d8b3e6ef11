package domain

import (
	"context"

	sharedDomain "github.com/felixgeelhaar/calcompare/internal/shared/domain"
	"github.com/google/uuid"
)

// Repository persists groups and their members.
// FindByID returns ErrGroupNotFound and FindMember ErrMemberNotFound when absent.
type Repository interface {
	sharedDomain.Repository[*Group]
	List(ctx context.Context) ([]*Group, error)
	FindMember(ctx context.Context, id uuid.UUID) (*Member, error)
}
