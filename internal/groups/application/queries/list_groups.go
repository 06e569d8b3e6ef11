package queries

import (
	"context"

	"github.com/felixgeelhaar/calcompare/internal/groups/domain"
	"github.com/google/uuid"
)

// MemberDTO is a read model of a group member.
type MemberDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// GroupDTO is a read model of a group.
type GroupDTO struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	Members []MemberDTO `json:"members"`
}

func toGroupDTO(g *domain.Group) GroupDTO {
	members := g.Members()
	dto := GroupDTO{ID: g.ID(), Name: g.Name(), Members: make([]MemberDTO, 0, len(members))}
	for _, m := range members {
		dto.Members = append(dto.Members, MemberDTO{ID: m.ID(), Name: m.Name(), Email: m.Email()})
	}
	return dto
}

// ListGroupsHandler returns every group ordered by name.
type ListGroupsHandler struct {
	repo domain.Repository
}

// NewListGroupsHandler creates a new ListGroupsHandler.
func NewListGroupsHandler(repo domain.Repository) *ListGroupsHandler {
	return &ListGroupsHandler{repo: repo}
}

// Handle executes the query.
func (h *ListGroupsHandler) Handle(ctx context.Context) ([]GroupDTO, error) {
	groups, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]GroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, toGroupDTO(g))
	}
	return dtos, nil
}

// GetGroupQuery selects a group by id.
type GetGroupQuery struct {
	GroupID uuid.UUID
}

// GetGroupHandler loads a single group.
type GetGroupHandler struct {
	repo domain.Repository
}

// NewGetGroupHandler creates a new GetGroupHandler.
func NewGetGroupHandler(repo domain.Repository) *GetGroupHandler {
	return &GetGroupHandler{repo: repo}
}

// Handle executes the query.
func (h *GetGroupHandler) Handle(ctx context.Context, query GetGroupQuery) (*GroupDTO, error) {
	g, err := h.repo.FindByID(ctx, query.GroupID)
	if err != nil {
		return nil, err
	}
	dto := toGroupDTO(g)
	return &dto, nil
}
