// Package domain models groups of people whose availability is compared together.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/calcompare/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrMemberNotInGroup = errors.New("member not in group")
	ErrGroupEmptyName   = errors.New("group name cannot be empty")
	ErrMemberEmptyName  = errors.New("member name cannot be empty")
	ErrDuplicateMember  = errors.New("member already in group")
)

// Group is a named, ordered set of members.
type Group struct {
	sharedDomain.Aggregate
	name    string
	members []Member
}

// NewGroup creates an empty group.
func NewGroup(name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupEmptyName
	}

	group := &Group{
		Aggregate: sharedDomain.NewAggregate(),
		name:      name,
	}
	group.Record(NewGroupCreated(group))
	return group, nil
}

// RehydrateGroup recreates a group from persisted state.
func RehydrateGroup(id uuid.UUID, name string, members []Member, createdAt, updatedAt time.Time) *Group {
	return &Group{
		Aggregate: sharedDomain.RehydrateAggregate(id, createdAt, updatedAt),
		name:      name,
		members:   append([]Member(nil), members...),
	}
}

func (g *Group) Name() string { return g.name }

// Members returns the members in the order they were added.
func (g *Group) Members() []Member {
	return append([]Member(nil), g.members...)
}

// Size returns the number of members.
func (g *Group) Size() int {
	return len(g.members)
}

// HasMember reports whether id belongs to the group.
func (g *Group) HasMember(id uuid.UUID) bool {
	_, ok := g.member(id)
	return ok
}

// AddMember appends a member.
func (g *Group) AddMember(m Member) error {
	if g.HasMember(m.ID()) {
		return fmt.Errorf("%w: %s", ErrDuplicateMember, m.ID())
	}
	g.members = append(g.members, m)
	g.Touch()
	g.Record(NewMemberAdded(g, m))
	return nil
}

// RemoveMember drops a member from the group.
func (g *Group) RemoveMember(id uuid.UUID) error {
	for i, m := range g.members {
		if m.ID() == id {
			g.members = append(g.members[:i:i], g.members[i+1:]...)
			g.Touch()
			g.Record(NewMemberRemoved(g, id))
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMemberNotInGroup, id)
}

// Subset selects members by id, in the order given. Duplicate ids are
// collapsed. No ids selects every member. Ids outside the group are an error
// naming all of them.
func (g *Group) Subset(ids []uuid.UUID) ([]Member, error) {
	if len(ids) == 0 {
		return g.Members(), nil
	}

	selected := make([]Member, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	var missing []string
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m, ok := g.member(id)
		if !ok {
			missing = append(missing, id.String())
			continue
		}
		selected = append(selected, m)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotInGroup, strings.Join(missing, ", "))
	}
	return selected, nil
}

func (g *Group) member(id uuid.UUID) (Member, bool) {
	for _, m := range g.members {
		if m.ID() == id {
			return m, true
		}
	}
	return Member{}, false
}
