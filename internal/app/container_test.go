package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	availabilityQueries "github.com/felixgeelhaar/calcompare/internal/availability/application/queries"
	calendarDomain "github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"github.com/felixgeelhaar/calcompare/internal/calendar/infrastructure/cache"
	groupCommands "github.com/felixgeelhaar/calcompare/internal/groups/application/commands"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/calcompare/pkg/config"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppEnv:              "test",
		SQLitePath:          filepath.Join(dir, "calcompare.db"),
		OutboxBatchSize:     100,
		OutboxMaxRetries:    5,
		OutboxRetentionDays: 14,
		CalendarProvider:    config.ProviderStatic,
		WorkStartHour:       9,
		WorkEndHour:         17,
		IntersectStrategy:   "sweep",
		FetchConcurrency:    4,
		FetchTimeout:        5 * time.Second,
		FetchRetries:        1,
		EventCacheTTL:       time.Minute,
		EventCacheSize:      100,
	}
}

func newContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()
	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	return c
}

func TestNewContainer_SQLite(t *testing.T) {
	c := newContainer(t, testConfig(t))
	defer c.Close()

	assert.Equal(t, database.DriverSQLite, c.DBConn.Driver())
	assert.NotNil(t, c.GroupRepo)
	assert.NotNil(t, c.OutboxRepo)
	assert.NotNil(t, c.UnitOfWork)
	assert.NotNil(t, c.OutboxProcessor)
	assert.NotNil(t, c.GroupAvailabilityHandler)
	assert.NotNil(t, c.IndividualAvailabilityHandler)
	assert.NotNil(t, c.SuggestMeetingsHandler)
	assert.NotNil(t, c.MemberBreakdownHandler)
	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.Prometheus)
	assert.IsType(t, &cache.CachedSource{}, c.EventSource)

	report := c.Health.Check(context.Background())
	assert.Equal(t, observability.HealthStatusHealthy, report.Status)
}

func TestNewContainer_InvalidWorkingHours(t *testing.T) {
	cfg := testConfig(t)
	cfg.WorkStartHour = 18

	_, err := NewContainer(context.Background(), cfg, nil)

	assert.Error(t, err)
}

func TestNewContainer_UnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.CalendarProvider = "exchange"

	_, err := NewContainer(context.Background(), cfg, nil)

	assert.ErrorContains(t, err, "unknown calendar provider")
}

func TestNewContainer_MetricsTextfile(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "calcompare.prom")

	c := newContainer(t, cfg)
	defer c.Close()
	require.NotNil(t, c.Prometheus)

	c.Metrics.Counter("test_counter", 1)
	c.WriteMetrics()

	data, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test_counter")
}

// The group is created by one process and analysed by a second one that reads the
// calendars from a fixture keyed by the persisted member ids.
func TestContainer_GroupAvailabilityAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	first := newContainer(t, cfg)
	created, err := first.CreateGroupHandler.Handle(ctx, groupCommands.CreateGroupCommand{Name: "Platform"})
	require.NoError(t, err)
	alice, err := first.AddMemberHandler.Handle(ctx, groupCommands.AddMemberCommand{GroupID: created.GroupID, Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	bob, err := first.AddMemberHandler.Handle(ctx, groupCommands.AddMemberCommand{GroupID: created.GroupID, Name: "Bob"})
	require.NoError(t, err)
	first.FlushOutbox(ctx)

	pending, err := first.OutboxRepo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	first.Close()

	day := time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)
	fixture := map[string][]calendarDomain.CalendarEvent{
		alice.MemberID.String(): {{
			ID:     "standup",
			Status: calendarDomain.StatusConfirmed,
			Start:  calendarDomain.At(day.Add(10 * time.Hour)),
			End:    calendarDomain.At(day.Add(11 * time.Hour)),
		}},
		bob.MemberID.String(): {},
	}
	data, err := json.Marshal(fixture)
	require.NoError(t, err)
	cfg.CalendarStaticPath = filepath.Join(t.TempDir(), "calendars.json")
	require.NoError(t, os.WriteFile(cfg.CalendarStaticPath, data, 0o600))

	second := newContainer(t, cfg)
	defer second.Close()

	result, err := second.GroupAvailabilityHandler.Handle(ctx, availabilityQueries.GroupAvailabilityQuery{
		GroupID:   created.GroupID,
		StartDate: day,
		EndDate:   day.Add(23 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, "Platform", result.GroupName)
	require.Len(t, result.CommonAvailability, 2)
	assert.Equal(t, 7.0, result.TotalAvailableHours)
	assert.Len(t, result.MembersAnalyzed, 2)

	_, err = second.GroupAvailabilityHandler.Handle(ctx, availabilityQueries.GroupAvailabilityQuery{
		GroupID:   uuid.New(),
		StartDate: day,
		EndDate:   day.Add(23 * time.Hour),
	})
	assert.Error(t, err)
}
