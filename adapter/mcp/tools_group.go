package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/groups/application/commands"
	"github.com/felixgeelhaar/calcompare/internal/groups/application/queries"
	"github.com/felixgeelhaar/mcp-go"
)

type groupCreateInput struct {
	Name string `json:"name" jsonschema:"required"`
}

type groupListInput struct{}

type groupShowInput struct {
	GroupID string `json:"group_id" jsonschema:"required"`
}

type groupAddMemberInput struct {
	GroupID  string `json:"group_id" jsonschema:"required"`
	MemberID string `json:"member_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

type groupRemoveMemberInput struct {
	GroupID  string `json:"group_id" jsonschema:"required"`
	MemberID string `json:"member_id" jsonschema:"required"`
}

type groupTools struct {
	app *cli.App
}

func registerGroupTools(srv *mcp.Server, t groupTools) {
	srv.Tool("group.create").
		Description("Create an empty group").
		Handler(t.create)

	srv.Tool("group.list").
		Description("List groups and their members").
		Handler(t.list)

	srv.Tool("group.show").
		Description("Show one group").
		Handler(t.show)

	srv.Tool("group.add_member").
		Description("Add a new member, or an existing member of another group, to a group").
		Handler(t.addMember)

	srv.Tool("group.remove_member").
		Description("Remove a member from a group").
		Handler(t.removeMember)
}

func (t groupTools) create(ctx context.Context, input groupCreateInput) (map[string]any, error) {
	if t.app.CreateGroupHandler == nil {
		return nil, errNoDatabase
	}
	if input.Name == "" {
		return nil, errors.New("name is required")
	}
	result, err := t.app.CreateGroupHandler.Handle(ctx, commands.CreateGroupCommand{Name: input.Name})
	if err != nil {
		return nil, err
	}
	t.app.FlushOutbox(ctx)
	return map[string]any{"group_id": result.GroupID, "name": input.Name}, nil
}

func (t groupTools) list(ctx context.Context, _ groupListInput) ([]queries.GroupDTO, error) {
	if t.app.ListGroupsHandler == nil {
		return nil, errNoDatabase
	}
	return t.app.ListGroupsHandler.Handle(ctx)
}

func (t groupTools) show(ctx context.Context, input groupShowInput) (*queries.GroupDTO, error) {
	if t.app.GetGroupHandler == nil {
		return nil, errNoDatabase
	}
	groupID, err := parseUUID("group_id", input.GroupID)
	if err != nil {
		return nil, err
	}
	return t.app.GetGroupHandler.Handle(ctx, queries.GetGroupQuery{GroupID: groupID})
}

func (t groupTools) addMember(ctx context.Context, input groupAddMemberInput) (map[string]any, error) {
	if t.app.AddMemberHandler == nil {
		return nil, errNoDatabase
	}
	groupID, err := parseUUID("group_id", input.GroupID)
	if err != nil {
		return nil, err
	}
	command := commands.AddMemberCommand{GroupID: groupID, Name: input.Name, Email: input.Email}
	if input.MemberID != "" {
		if command.MemberID, err = parseUUID("member_id", input.MemberID); err != nil {
			return nil, err
		}
	} else if input.Name == "" {
		return nil, errors.New("either name or member_id is required")
	}

	result, err := t.app.AddMemberHandler.Handle(ctx, command)
	if err != nil {
		return nil, err
	}
	t.app.FlushOutbox(ctx)
	return map[string]any{"group_id": groupID, "member_id": result.MemberID, "added": true}, nil
}

func (t groupTools) removeMember(ctx context.Context, input groupRemoveMemberInput) (map[string]any, error) {
	if t.app.RemoveMemberHandler == nil {
		return nil, errNoDatabase
	}
	groupID, err := parseUUID("group_id", input.GroupID)
	if err != nil {
		return nil, err
	}
	memberID, err := parseUUID("member_id", input.MemberID)
	if err != nil {
		return nil, err
	}
	if err := t.app.RemoveMemberHandler.Handle(ctx, commands.RemoveMemberCommand{GroupID: groupID, MemberID: memberID}); err != nil {
		return nil, err
	}
	t.app.FlushOutbox(ctx)
	return map[string]any{"group_id": groupID, "member_id": memberID, "removed": true}, nil
}
