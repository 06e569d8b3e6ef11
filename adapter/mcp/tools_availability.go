package mcp

import (
	"context"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/availability/application/queries"
	"github.com/felixgeelhaar/mcp-go"
)

type groupAvailabilityInput struct {
	GroupID     string   `json:"group_id" jsonschema:"required"`
	StartDate   string   `json:"start_date" jsonschema:"required"`
	EndDate     string   `json:"end_date" jsonschema:"required"`
	MinDuration int      `json:"min_duration,omitempty"`
	MemberIDs   []string `json:"member_ids,omitempty"`
}

type userAvailabilityInput struct {
	UserID      string `json:"user_id" jsonschema:"required"`
	StartDate   string `json:"start_date" jsonschema:"required"`
	EndDate     string `json:"end_date" jsonschema:"required"`
	MinDuration int    `json:"min_duration,omitempty"`
}

type membersAvailabilityInput struct {
	GroupID     string `json:"group_id" jsonschema:"required"`
	StartDate   string `json:"start_date" jsonschema:"required"`
	EndDate     string `json:"end_date" jsonschema:"required"`
	MinDuration int    `json:"min_duration,omitempty"`
}

type suggestMeetingsInput struct {
	GroupID         string `json:"group_id" jsonschema:"required"`
	StartDate       string `json:"start_date" jsonschema:"required"`
	EndDate         string `json:"end_date" jsonschema:"required"`
	MeetingDuration int    `json:"meeting_duration" jsonschema:"required"`
	MaxSuggestions  int    `json:"max_suggestions,omitempty"`
}

type availabilityTools struct {
	app *cli.App
}

func registerAvailabilityTools(srv *mcp.Server, t availabilityTools) {
	srv.Tool("availability.group").
		Description("Find the time every member of a group is free").
		Handler(t.group)

	srv.Tool("availability.user").
		Description("List the free working time of one member").
		Handler(t.user)

	srv.Tool("availability.members").
		Description("Show each member's free time next to the group's common availability").
		Handler(t.members)

	srv.Tool("availability.suggest").
		Description("Suggest meeting times for a group").
		Handler(t.suggest)
}

func (t availabilityTools) group(ctx context.Context, input groupAvailabilityInput) (*queries.GroupAvailabilityResult, error) {
	if t.app.GroupAvailabilityHandler == nil {
		return nil, errNoDatabase
	}
	groupID, err := parseUUID("group_id", input.GroupID)
	if err != nil {
		return nil, err
	}
	start, end, err := parsePeriod(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	memberIDs, err := parseUUIDs("member_ids", input.MemberIDs)
	if err != nil {
		return nil, err
	}

	return t.app.GroupAvailabilityHandler.Handle(ctx, queries.GroupAvailabilityQuery{
		GroupID:            groupID,
		StartDate:          start,
		EndDate:            end,
		MinDurationMinutes: input.MinDuration,
		MemberIDs:          memberIDs,
	})
}

func (t availabilityTools) user(ctx context.Context, input userAvailabilityInput) (*queries.IndividualAvailabilityResult, error) {
	if t.app.IndividualAvailabilityHandler == nil {
		return nil, errNoDatabase
	}
	userID, err := parseUUID("user_id", input.UserID)
	if err != nil {
		return nil, err
	}
	start, end, err := parsePeriod(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	return t.app.IndividualAvailabilityHandler.Handle(ctx, queries.IndividualAvailabilityQuery{
		UserID:             userID,
		StartDate:          start,
		EndDate:            end,
		MinDurationMinutes: input.MinDuration,
	})
}

func (t availabilityTools) members(ctx context.Context, input membersAvailabilityInput) (*queries.MemberBreakdownResult, error) {
	if t.app.MemberBreakdownHandler == nil {
		return nil, errNoDatabase
	}
	groupID, err := parseUUID("group_id", input.GroupID)
	if err != nil {
		return nil, err
	}
	start, end, err := parsePeriod(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	return t.app.MemberBreakdownHandler.Handle(ctx, queries.MemberBreakdownQuery{
		GroupID:            groupID,
		StartDate:          start,
		EndDate:            end,
		MinDurationMinutes: input.MinDuration,
	})
}

func (t availabilityTools) suggest(ctx context.Context, input suggestMeetingsInput) (*queries.SuggestMeetingsResult, error) {
	if t.app.SuggestMeetingsHandler == nil {
		return nil, errNoDatabase
	}
	groupID, err := parseUUID("group_id", input.GroupID)
	if err != nil {
		return nil, err
	}
	start, end, err := parsePeriod(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	return t.app.SuggestMeetingsHandler.Handle(ctx, queries.SuggestMeetingsQuery{
		GroupID:                groupID,
		StartDate:              start,
		EndDate:                end,
		MeetingDurationMinutes: input.MeetingDuration,
		MaxSuggestions:         input.MaxSuggestions,
	})
}
