// Package app wires configuration, storage, calendar providers and handlers together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	availabilityQueries "github.com/felixgeelhaar/calcompare/internal/availability/application/queries"
	availabilityDomain "github.com/felixgeelhaar/calcompare/internal/availability/domain"
	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	calendarDomain "github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"github.com/felixgeelhaar/calcompare/internal/calendar/infrastructure/resilience"
	"github.com/felixgeelhaar/calcompare/internal/calendar/setup"
	groupCommands "github.com/felixgeelhaar/calcompare/internal/groups/application/commands"
	groupQueries "github.com/felixgeelhaar/calcompare/internal/groups/application/queries"
	groupDomain "github.com/felixgeelhaar/calcompare/internal/groups/domain"
	sharedApplication "github.com/felixgeelhaar/calcompare/internal/shared/application"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/calcompare/pkg/config"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	DBConn         database.Connection
	RedisClient    *redis.Client
	EventPublisher eventbus.Publisher
	Metrics        observability.Metrics
	Prometheus     *observability.PrometheusMetrics
	Health         *observability.HealthRegistry

	// Repositories
	GroupRepo  groupDomain.Repository
	OutboxRepo outbox.Repository
	UnitOfWork sharedApplication.UnitOfWork

	// Outbox
	OutboxProcessor *outbox.Processor

	// Calendar
	EventSource calendarApp.EventSource
	Breakers    *resilience.BreakerSource

	// Availability
	Engine                        *availabilityDomain.Engine
	GroupAvailabilityHandler      *availabilityQueries.GroupAvailabilityHandler
	IndividualAvailabilityHandler *availabilityQueries.IndividualAvailabilityHandler
	SuggestMeetingsHandler        *availabilityQueries.SuggestMeetingsHandler
	MemberBreakdownHandler        *availabilityQueries.MemberBreakdownHandler

	// Groups
	CreateGroupHandler  *groupCommands.CreateGroupHandler
	AddMemberHandler    *groupCommands.AddMemberHandler
	RemoveMemberHandler *groupCommands.RemoveMemberHandler
	ListGroupsHandler   *groupQueries.ListGroupsHandler
	GetGroupHandler     *groupQueries.GetGroupHandler
}

// NewContainer creates a new container with all dependencies wired up.
// An empty DATABASE_URL runs against the local SQLite file.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
		Health: observability.NewHealthRegistry(),
	}

	if cfg.MetricsEnabled || cfg.MetricsTextfile != "" {
		c.Prometheus = observability.NewPrometheusMetrics()
		c.Metrics = c.Prometheus
	} else {
		c.Metrics = observability.NoopMetrics{}
	}

	conn, err := database.NewConnection(ctx, database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	logger.Info("connected to database", "driver", conn.Driver())

	if err := c.initRepositories(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     time.Second,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}, c.Metrics, logger)

	if err := c.initEventSource(); err != nil {
		c.Close()
		return nil, err
	}

	engine, err := availabilityDomain.NewEngine(availabilityDomain.EngineConfig{
		WorkingHours: availabilityDomain.WorkingHours{StartHour: cfg.WorkStartHour, EndHour: cfg.WorkEndHour},
		Strategy:     availabilityDomain.IntersectStrategy(cfg.IntersectStrategy),
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("invalid availability settings: %w", err)
	}
	c.Engine = engine

	c.initHandlers()
	c.registerHealthChecks()

	logger.Info("container initialized",
		"driver", conn.Driver(),
		"calendar_provider", cfg.CalendarProvider,
		"intersect_strategy", engine.Strategy(),
		"redis", c.RedisClient != nil,
	)

	return c, nil
}

func (c *Container) initRepositories(ctx context.Context) error {
	factory := NewRepositoryFactory(c.DBConn)

	if err := factory.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	c.Logger.Debug("migrations completed", "driver", factory.Driver())

	var err error
	if c.GroupRepo, err = factory.GroupRepository(); err != nil {
		return err
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		return err
	}
	if c.UnitOfWork, err = factory.UnitOfWork(); err != nil {
		return err
	}
	return nil
}

// initRedis connects the shared event cache. Outside production an unreachable
// Redis falls back to the in-process cache.
func (c *Container) initRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, event cache will stay in process", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, event cache will stay in process", "error", err)
		return nil
	}

	c.RedisClient = client
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) initPublisher() error {
	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(eventbus.RabbitMQConfig{
		URL:      c.Config.RabbitMQURL,
		Exchange: c.Config.RabbitMQExchange,
	}, c.Logger)
	if err != nil {
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}

	c.EventPublisher = publisher
	return nil
}

func (c *Container) initEventSource() error {
	cfg := c.Config

	provider, err := calendarDomain.ParseProviderType(cfg.CalendarProvider)
	if err != nil {
		return err
	}
	source, err := setup.NewEventSource(setup.ProviderConfig{
		Provider:   provider,
		CalendarID: cfg.CalendarID,
		StaticPath: cfg.CalendarStaticPath,
		CalDAV: setup.CalDAVConfig{
			URL:          cfg.CalDAVURL,
			Username:     cfg.CalDAVUsername,
			Password:     cfg.CalDAVPassword,
			PathTemplate: cfg.CalDAVPathTemplate,
		},
		OAuth: setup.OAuthConfig{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			TokenURL:     cfg.OAuthTokenURL,
			TokenDir:     cfg.OAuthTokenDir,
		},
		Logger: c.Logger,
	})
	if err != nil {
		return err
	}

	chain := setup.Wrap(source, setup.ResilienceConfig{
		Retries:          cfg.FetchRetries,
		FailureThreshold: cfg.BreakerFailureThreshold,
		BreakerTimeout:   cfg.BreakerTimeout,
		CacheTTL:         cfg.EventCacheTTL,
		CacheSize:        cfg.EventCacheSize,
		Redis:            c.RedisClient,
	}, c.Metrics, c.Logger)

	c.EventSource = chain.Source
	c.Breakers = chain.Breakers
	c.Logger.Debug("calendar source ready", "provider", provider.DisplayName(), "cache_ttl", cfg.EventCacheTTL)
	return nil
}

func (c *Container) initHandlers() {
	cfg := c.Config

	collector := availabilityQueries.NewParticipantCollector(c.EventSource, availabilityQueries.CollectorConfig{
		Concurrency: cfg.FetchConcurrency,
		Timeout:     cfg.FetchTimeout,
	}, c.Metrics, c.Logger)

	deps := availabilityQueries.Dependencies{
		Groups:    c.GroupRepo,
		Collector: collector,
		Engine:    c.Engine,
		Publisher: c.EventPublisher,
		Metrics:   c.Metrics,
		Logger:    c.Logger,
	}
	c.GroupAvailabilityHandler = availabilityQueries.NewGroupAvailabilityHandler(deps)
	c.IndividualAvailabilityHandler = availabilityQueries.NewIndividualAvailabilityHandler(deps)
	c.SuggestMeetingsHandler = availabilityQueries.NewSuggestMeetingsHandler(deps)
	c.MemberBreakdownHandler = availabilityQueries.NewMemberBreakdownHandler(deps)

	c.CreateGroupHandler = groupCommands.NewCreateGroupHandler(c.GroupRepo, c.OutboxRepo, c.UnitOfWork)
	c.AddMemberHandler = groupCommands.NewAddMemberHandler(c.GroupRepo, c.OutboxRepo, c.UnitOfWork)
	c.RemoveMemberHandler = groupCommands.NewRemoveMemberHandler(c.GroupRepo, c.OutboxRepo, c.UnitOfWork)
	c.ListGroupsHandler = groupQueries.NewListGroupsHandler(c.GroupRepo)
	c.GetGroupHandler = groupQueries.NewGetGroupHandler(c.GroupRepo)
}

func (c *Container) registerHealthChecks() {
	c.Health.Register("database", observability.PingChecker("database", true, c.DBConn.Ping))

	if c.RedisClient != nil {
		c.Health.Register("redis", observability.PingChecker("redis", false, func(ctx context.Context) error {
			return c.RedisClient.Ping(ctx).Err()
		}))
	}

	if pinger, ok := c.EventPublisher.(interface{ Ping(context.Context) error }); ok {
		c.Health.Register("rabbitmq", observability.PingChecker("rabbitmq", false, pinger.Ping))
	}
}

// FlushOutbox publishes every due outbox message. Publishing failures stay in the
// outbox for a later run.
func (c *Container) FlushOutbox(ctx context.Context) {
	if c.OutboxProcessor == nil {
		return
	}
	if err := c.OutboxProcessor.Flush(ctx); err != nil {
		c.Logger.Warn("failed to flush outbox", observability.ErrorKey, err)
	}
}

// WriteMetrics writes the Prometheus textfile when one is configured.
func (c *Container) WriteMetrics() {
	if c.Prometheus == nil || c.Config.MetricsTextfile == "" {
		return
	}
	if err := c.Prometheus.WriteTextfile(c.Config.MetricsTextfile); err != nil {
		c.Logger.Warn("failed to write metrics textfile", "path", c.Config.MetricsTextfile, observability.ErrorKey, err)
	}
}

// Close releases all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Debug("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Debug("database connection closed", "driver", c.DBConn.Driver())
		}
	}
}
