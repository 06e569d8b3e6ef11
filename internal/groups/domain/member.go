package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Member is a person whose calendar can be compared. The member id doubles
// as the participant id used to look up calendars.
type Member struct {
	id    uuid.UUID
	name  string
	email string
}

// NewMember creates a member with a fresh id.
func NewMember(name, email string) (Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Member{}, ErrMemberEmptyName
	}
	return Member{
		id:    uuid.New(),
		name:  name,
		email: strings.ToLower(strings.TrimSpace(email)),
	}, nil
}

// RehydrateMember recreates a member from persisted state.
func RehydrateMember(id uuid.UUID, name, email string) Member {
	return Member{id: id, name: name, email: email}
}

func (m Member) ID() uuid.UUID { return m.id }
func (m Member) Name() string  { return m.name }
func (m Member) Email() string { return m.email }

// ParticipantID is the key used for calendar lookups.
func (m Member) ParticipantID() string {
	return m.id.String()
}
