package cli

import (
	"context"

	internalApp "github.com/felixgeelhaar/calcompare/internal/app"
	availabilityQueries "github.com/felixgeelhaar/calcompare/internal/availability/application/queries"
	groupCommands "github.com/felixgeelhaar/calcompare/internal/groups/application/commands"
	groupQueries "github.com/felixgeelhaar/calcompare/internal/groups/application/queries"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	// Availability Query Handlers
	GroupAvailabilityHandler      *availabilityQueries.GroupAvailabilityHandler
	IndividualAvailabilityHandler *availabilityQueries.IndividualAvailabilityHandler
	SuggestMeetingsHandler        *availabilityQueries.SuggestMeetingsHandler
	MemberBreakdownHandler        *availabilityQueries.MemberBreakdownHandler

	// Group Command Handlers
	CreateGroupHandler  *groupCommands.CreateGroupHandler
	AddMemberHandler    *groupCommands.AddMemberHandler
	RemoveMemberHandler *groupCommands.RemoveMemberHandler

	// Group Query Handlers
	ListGroupsHandler *groupQueries.ListGroupsHandler
	GetGroupHandler   *groupQueries.GetGroupHandler

	// Operations
	Health              *observability.HealthRegistry
	OutboxProcessor     *outbox.Processor
	OutboxRepo          outbox.Repository
	OutboxRetentionDays int

	container *internalApp.Container
}

// NewApp exposes the handlers of a wired container to the commands.
func NewApp(c *internalApp.Container) *App {
	return &App{
		GroupAvailabilityHandler:      c.GroupAvailabilityHandler,
		IndividualAvailabilityHandler: c.IndividualAvailabilityHandler,
		SuggestMeetingsHandler:        c.SuggestMeetingsHandler,
		MemberBreakdownHandler:        c.MemberBreakdownHandler,
		CreateGroupHandler:            c.CreateGroupHandler,
		AddMemberHandler:              c.AddMemberHandler,
		RemoveMemberHandler:           c.RemoveMemberHandler,
		ListGroupsHandler:             c.ListGroupsHandler,
		GetGroupHandler:               c.GetGroupHandler,
		Health:                        c.Health,
		OutboxProcessor:               c.OutboxProcessor,
		OutboxRepo:                    c.OutboxRepo,
		OutboxRetentionDays:           c.Config.OutboxRetentionDays,
		container:                     c,
	}
}

// FlushOutbox publishes the events written by the last command.
func (a *App) FlushOutbox(ctx context.Context) {
	if a.container != nil {
		a.container.FlushOutbox(ctx)
	}
}

// WriteMetrics writes the metrics textfile, if one is configured.
func (a *App) WriteMetrics() {
	if a.container != nil {
		a.container.WriteMetrics()
	}
}

var app *App

// SetApp sets the global CLI application.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application.
func GetApp() *App {
	return app
}
