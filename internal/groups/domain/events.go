package domain

import (
	sharedDomain "github.com/felixgeelhaar/calcompare/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Group"

// Routing keys for group events.
const (
	RoutingKeyGroupCreated  = "groups.group.created"
	RoutingKeyMemberAdded   = "groups.member.added"
	RoutingKeyMemberRemoved = "groups.member.removed"
)

// GroupCreated is emitted when a group is created.
type GroupCreated struct {
	sharedDomain.BaseEvent
	GroupID uuid.UUID `json:"group_id"`
	Name    string    `json:"name"`
}

// NewGroupCreated creates a GroupCreated event.
func NewGroupCreated(g *Group) *GroupCreated {
	return &GroupCreated{
		BaseEvent: sharedDomain.NewBaseEvent(g.ID(), aggregateType, RoutingKeyGroupCreated),
		GroupID:   g.ID(),
		Name:      g.Name(),
	}
}

// MemberAdded is emitted when a member joins a group.
type MemberAdded struct {
	sharedDomain.BaseEvent
	GroupID  uuid.UUID `json:"group_id"`
	MemberID uuid.UUID `json:"member_id"`
	Name     string    `json:"name"`
}

// NewMemberAdded creates a MemberAdded event.
func NewMemberAdded(g *Group, m Member) *MemberAdded {
	return &MemberAdded{
		BaseEvent: sharedDomain.NewBaseEvent(g.ID(), aggregateType, RoutingKeyMemberAdded),
		GroupID:   g.ID(),
		MemberID:  m.ID(),
		Name:      m.Name(),
	}
}

// MemberRemoved is emitted when a member leaves a group.
type MemberRemoved struct {
	sharedDomain.BaseEvent
	GroupID  uuid.UUID `json:"group_id"`
	MemberID uuid.UUID `json:"member_id"`
}

// NewMemberRemoved creates a MemberRemoved event.
func NewMemberRemoved(g *Group, memberID uuid.UUID) *MemberRemoved {
	return &MemberRemoved{
		BaseEvent: sharedDomain.NewBaseEvent(g.ID(), aggregateType, RoutingKeyMemberRemoved),
		GroupID:   g.ID(),
		MemberID:  memberID,
	}
}
