// Package persistence stores groups in memory, SQLite or PostgreSQL.
package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/calcompare/internal/groups/domain"
	"github.com/google/uuid"
)

// InMemoryGroupRepository keeps groups in process. Stored groups are copies,
// so callers never share state with the repository.
type InMemoryGroupRepository struct {
	mu      sync.RWMutex
	groups  map[uuid.UUID]*domain.Group
	members map[uuid.UUID]domain.Member
}

var _ domain.Repository = (*InMemoryGroupRepository)(nil)

// NewInMemoryGroupRepository creates an empty repository.
func NewInMemoryGroupRepository() *InMemoryGroupRepository {
	return &InMemoryGroupRepository{
		groups:  make(map[uuid.UUID]*domain.Group),
		members: make(map[uuid.UUID]domain.Member),
	}
}

func (r *InMemoryGroupRepository) Save(_ context.Context, g *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.groups[g.ID()] = clone(g)
	for _, m := range g.Members() {
		r.members[m.ID()] = m
	}
	return nil
}

func (r *InMemoryGroupRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGroupNotFound, id)
	}
	return clone(g), nil
}

func (r *InMemoryGroupRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrGroupNotFound, id)
	}
	delete(r.groups, id)
	return nil
}

// List returns groups ordered by name.
func (r *InMemoryGroupRepository) List(_ context.Context) ([]*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]*domain.Group, 0, len(r.groups))
	for _, g := range r.groups {
		groups = append(groups, clone(g))
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name() != groups[j].Name() {
			return groups[i].Name() < groups[j].Name()
		}
		return groups[i].ID().String() < groups[j].ID().String()
	})
	return groups, nil
}

func (r *InMemoryGroupRepository) FindMember(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, id)
	}
	return &m, nil
}

func clone(g *domain.Group) *domain.Group {
	return domain.RehydrateGroup(g.ID(), g.Name(), g.Members(), g.CreatedAt(), g.UpdatedAt())
}
