// Package app wires configuration, storage, messaging, and the allocation
// handlers into one dependency container shared by the CLI and the worker.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taskpilot/taskpilot/internal/allocation/application/commands"
	"github.com/taskpilot/taskpilot/internal/allocation/application/consumers"
	"github.com/taskpilot/taskpilot/internal/allocation/application/queries"
	"github.com/taskpilot/taskpilot/internal/allocation/application/services"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/allocation/infrastructure/persistence"
	"github.com/taskpilot/taskpilot/internal/notification"
	sharedApplication "github.com/taskpilot/taskpilot/internal/shared/application"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/database"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/eventbus"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
	"github.com/taskpilot/taskpilot/pkg/config"
	"github.com/taskpilot/taskpilot/pkg/observability"
)

// Container holds the wired application. With DATABASE_URL set it runs the
// full team mode on PostgreSQL; without it, local single-user mode on SQLite
// with the planner and team features disabled.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	pool      *pgxpool.Pool
	sqliteDB  *sql.DB
	redis     *redis.Client
	publisher eventbus.Publisher
	processor *outbox.Processor

	UnitOfWork sharedApplication.UnitOfWork
	OutboxRepo outbox.Repository

	// LocalStore is only set in local mode and backs the local CLI writes.
	LocalStore *persistence.SQLiteLocalStore
	Schedules  domain.ScheduleRepository

	Workload  *services.WorkloadService
	Planner   *services.PlannerService
	Scheduler *services.SchedulerService

	ConfirmAssignments  *commands.ConfirmAssignmentsHandler
	GenerateSchedule    *commands.GenerateScheduleHandler
	AcceptSchedule      *commands.AcceptScheduleHandler
	LockScheduleItems   *commands.LockScheduleItemsHandler
	AssignmentLifecycle *commands.AssignmentLifecycleHandler
	WorkSession         *commands.WorkSessionHandler

	GetWorkload          *queries.GetWorkloadHandler
	TeamWorkload         *queries.TeamWorkloadHandler
	GetSchedule          *queries.GetScheduleHandler
	CheckScheduleUpdates *queries.CheckScheduleUpdatesHandler
	SessionHistory       *queries.SessionHistoryHandler
	TodayWork            *queries.TodayWorkHandler

	Notifier notification.Notifier
	Renderer *notification.Renderer
	Health   *observability.HealthRegistry

	// Postgres-mode repositories, kept for handler wiring.
	assignments domain.AssignmentRepository
	tasks       domain.TaskRepository
	people      domain.PersonRepository
	items       domain.WorkItemRepository
	unavailable domain.UnavailableRepository

	sessions domain.WorkSessionRepository
}

// LocalMode reports whether the container runs without PostgreSQL. Planner,
// assignment, and team workload handlers are nil in local mode.
func (c *Container) LocalMode() bool {
	return c.pool == nil
}

// NewContainer builds the application from configuration. The caller owns
// the container and must Close it.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = observability.LoggerFromEnv()
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Renderer: notification.NewRenderer(cfg.NotifyBaseURL),
		Health:   observability.NewHealthRegistry(),
	}

	var err error
	if cfg.LocalMode() {
		err = c.wireSQLite(ctx, cfg)
	} else {
		err = c.wirePostgres(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	c.wireNotifier(cfg)
	c.wireHandlers()

	if err := c.wireMessaging(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) wirePostgres(ctx context.Context, cfg *config.Config) error {
	pool, err := database.OpenPostgres(ctx, database.Config{
		URL: cfg.DatabaseURL,
	})
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	if err := persistence.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}

	c.pool = pool
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)
	c.OutboxRepo = outbox.NewPostgresRepository(pool)
	c.Schedules = persistence.NewPostgresScheduleRepository(pool)
	c.Health.Register("database", observability.DatabaseHealthChecker(func(ctx context.Context) error {
		return pool.Ping(ctx)
	}))

	people := persistence.NewPostgresPersonRepository(pool)
	c.sessions = persistence.NewPostgresWorkSessionRepository(pool)
	c.items = persistence.NewPostgresWorkItemRepository(pool)
	c.unavailable = persistence.NewPostgresUnavailableRepository(pool)
	c.people = people
	c.tasks = persistence.NewPostgresTaskRepository(pool)
	c.assignments = persistence.NewPostgresAssignmentRepository(pool)

	cache := c.wireRedis(cfg)
	c.Workload = services.NewWorkloadService(c.items, c.unavailable, cache, cfg.DailyCapacityHours, c.Logger)
	c.Planner = services.NewPlannerService(c.tasks, people, people, c.Workload, plannerConfig(cfg), c.Logger)
	c.Scheduler = services.NewSchedulerService(c.items, c.unavailable, c.Schedules, schedulerConfig(cfg), c.Logger)
	return nil
}

func (c *Container) wireSQLite(ctx context.Context, cfg *config.Config) error {
	db, err := database.OpenSQLite(ctx, database.Config{
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}

	store, err := persistence.NewSQLiteLocalStore(db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("local store schema: %w", err)
	}
	schedules, err := persistence.NewSQLiteScheduleRepository(db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("schedule schema: %w", err)
	}
	sessions, err := persistence.NewSQLiteWorkSessionRepository(db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("session schema: %w", err)
	}

	c.sqliteDB = db
	c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)
	c.OutboxRepo = outbox.NewInMemoryRepository()
	c.LocalStore = store
	c.Schedules = schedules
	c.sessions = sessions
	c.items = store
	c.unavailable = store
	c.Health.Register("database", observability.DatabaseHealthChecker(db.PingContext))

	c.Workload = services.NewWorkloadService(store, store, nil, cfg.DailyCapacityHours, c.Logger)
	c.Scheduler = services.NewSchedulerService(store, store, schedules, schedulerConfig(cfg), c.Logger)
	return nil
}

// wireRedis attaches the optional workload snapshot cache. A bad REDIS_URL
// disables caching rather than failing startup.
func (c *Container) wireRedis(cfg *config.Config) services.SnapshotCache {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid REDIS_URL, workload cache disabled", "error", err)
		return nil
	}
	client := redis.NewClient(opts)
	c.redis = client
	c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	return services.NewRedisSnapshotCache(client, services.DefaultSnapshotTTL)
}

func (c *Container) wireNotifier(cfg *config.Config) {
	if cfg.NotifyWebhookURL == "" {
		c.Notifier = notification.NewNoopNotifier(c.Logger)
		return
	}

	var tokens notification.TokenProvider
	if cfg.OAuthTokenURL != "" {
		tokens = notification.NewOAuthTokenProvider(
			cfg.OAuthClientID, cfg.OAuthClientSecret,
			cfg.OAuthTokenURL, strings.Fields(cfg.OAuthScopes))
	} else {
		tokens = notification.StaticTokenProvider(cfg.NotifyStaticToken)
	}
	c.Notifier = notification.NewWebhookGateway(notification.GatewayConfig{
		WebhookURL: cfg.NotifyWebhookURL,
		Timeout:    cfg.NotifyTimeout,
	}, tokens, c.Logger)
}

func (c *Container) wireHandlers() {
	if c.pool != nil {
		c.ConfirmAssignments = commands.NewConfirmAssignmentsHandler(
			c.assignments, c.tasks, c.people, c.OutboxRepo, c.UnitOfWork,
			c.Notifier, c.Renderer, c.Logger)
		c.AssignmentLifecycle = commands.NewAssignmentLifecycleHandler(
			c.assignments, c.UnitOfWork, c.Logger)
		c.TeamWorkload = queries.NewTeamWorkloadHandler(c.people, c.Workload)
	}

	c.GenerateSchedule = commands.NewGenerateScheduleHandler(
		c.Scheduler, c.Schedules, c.OutboxRepo, c.UnitOfWork, c.Logger)
	c.AcceptSchedule = commands.NewAcceptScheduleHandler(
		c.Schedules, c.OutboxRepo, c.UnitOfWork, c.Logger)
	c.LockScheduleItems = commands.NewLockScheduleItemsHandler(
		c.Schedules, c.UnitOfWork, c.Logger)
	c.WorkSession = commands.NewWorkSessionHandler(c.sessions, c.UnitOfWork, c.Logger)

	c.GetWorkload = queries.NewGetWorkloadHandler(c.Workload)
	c.GetSchedule = queries.NewGetScheduleHandler(c.Schedules)
	c.SessionHistory = queries.NewSessionHistoryHandler(c.sessions)
	c.TodayWork = queries.NewTodayWorkHandler(c.Schedules, c.sessions)

	c.CheckScheduleUpdates = queries.NewCheckScheduleUpdatesHandler(c.Schedules, c.items, c.unavailable)
}

// wireMessaging connects the outbox processor to RabbitMQ, or to the
// in-process bus when no broker is configured.
func (c *Container) wireMessaging(ctx context.Context, cfg *config.Config) error {
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		c.publisher = publisher
		c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(func(ctx context.Context) error {
			return publisher.Ping()
		}))
	} else {
		bus := eventbus.NewInProcessEventBus(c.Logger)
		bus.RegisterConsumer(consumers.NewWorkloadInvalidator(c.Workload, c.Logger))
		c.publisher = bus
	}

	if !cfg.OutboxProcessorEnabled {
		return nil
	}
	c.processor = outbox.NewProcessor(c.OutboxRepo, c.publisher, outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}, c.Logger)
	return c.processor.Start(ctx)
}

// OutboxProcessor exposes the relay, nil when OUTBOX_PROCESSOR_ENABLED is
// off. The worker reads its stats for the health endpoint.
func (c *Container) OutboxProcessor() *outbox.Processor {
	return c.processor
}

// EventBus exposes the publisher for in-process subscribers.
func (c *Container) EventBus() eventbus.Publisher {
	return c.publisher
}

// Close stops the outbox processor and releases every connection.
func (c *Container) Close() {
	if c.processor != nil {
		c.processor.Stop()
	}
	if closer, ok := c.publisher.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
	if c.sqliteDB != nil {
		_ = c.sqliteDB.Close()
	}
}

func plannerConfig(cfg *config.Config) domain.PlannerConfig {
	return domain.PlannerConfig{
		SkillMatchThreshold:   cfg.SkillMatchThreshold,
		WorkloadCeiling:       cfg.WorkloadCeiling,
		EnableBalanceAdvisory: cfg.EnableBalanceAdvisory,
	}
}

func schedulerConfig(cfg *config.Config) domain.SchedulerConfig {
	return domain.SchedulerConfig{
		HorizonDays:        cfg.ScheduleHorizonDays,
		DailyCapacityHours: cfg.DailyCapacityHours,
		UrgencyWeight:      cfg.UrgencyWeight,
		ImportanceWeight:   cfg.ImportanceWeight,
		ContinuityWeight:   cfg.ContinuityWeight,
	}
}
