package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	catalogCommands "github.com/felixgeelhaar/cinema/internal/catalog/application/commands"
	catalogQueries "github.com/felixgeelhaar/cinema/internal/catalog/application/queries"
	catalogDomain "github.com/felixgeelhaar/cinema/internal/catalog/domain"
	catalogPersistence "github.com/felixgeelhaar/cinema/internal/catalog/infrastructure/persistence"
	scheduleCommands "github.com/felixgeelhaar/cinema/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/services"
	scheduleSubs "github.com/felixgeelhaar/cinema/internal/scheduling/application/subscribers"
	schedulingDomain "github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/cache"
	"github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/caldav"
	schedulePersistence "github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/cinema/internal/shared/application"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/cinema/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/cinema/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/cinema/pkg/config"
	"github.com/felixgeelhaar/cinema/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Observability
	Metrics    observability.Metrics
	Prometheus *observability.PrometheusMetrics
	Health     *observability.HealthRegistry

	// Database
	DB       database.Connection
	DBDriver database.Driver

	// Redis snapshot cache, nil when not configured
	RedisClient   *redis.Client
	SnapshotCache *cache.RedisSnapshotCache

	// Messaging
	EventPublisher eventbus.Publisher
	EventBus       *eventbus.InProcessBus
	rabbit         *eventbus.RabbitMQPublisher

	// Repositories
	MovieRepo  catalogDomain.Repository
	EventStore schedulingDomain.EventStore
	OutboxRepo outbox.Repository
	UnitOfWork sharedApplication.UnitOfWork

	// Catalog handlers
	AddMovieHandler   *catalogCommands.AddMovieHandler
	ListMoviesHandler *catalogQueries.ListMoviesHandler

	// Scheduling
	ScheduleLoader                *services.ScheduleLoader
	ScheduleWriter                *scheduleCommands.ScheduleWriter
	ScheduleShowHandler           *scheduleCommands.ScheduleShowHandler
	ScheduleUnavailabilityHandler *scheduleCommands.ScheduleUnavailabilityHandler
	CancelRoomEventHandler        *scheduleCommands.CancelRoomEventHandler
	GetRoomScheduleHandler        *scheduleQueries.GetRoomScheduleHandler
	ListRoomsHandler              *scheduleQueries.ListRoomsHandler

	// Calendar export, nil when CalDAV is not configured
	CalendarPublisher  *caldav.Publisher
	CalendarSubscriber *scheduleSubs.CalendarSubscriber

	OutboxProcessor *outbox.Processor
}

// NewContainer creates and wires all dependencies. An empty DATABASE_URL
// selects local SQLite mode.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	prom := observability.NewPrometheusMetrics()
	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    prom,
		Prometheus: prom,
		Health:     observability.NewHealthRegistry(),
	}

	conn, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.DB = conn
	c.DBDriver = conn.Driver()
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))

	factory := NewRepositoryFactory(conn)
	if c.MovieRepo, err = factory.MovieRepository(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create movie repository: %w", err)
	}
	if c.EventStore, err = factory.EventStore(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create event store: %w", err)
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create outbox repository: %w", err)
	}
	c.Health.Register("outbox", observability.OutboxBacklogChecker(cfg.OutboxBacklogLimit, c.OutboxRepo.CountPending))
	if c.UnitOfWork, err = factory.UnitOfWork(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create unit of work: %w", err)
	}

	if err := c.connectRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.connectBroker(); err != nil {
		c.Close()
		return nil, err
	}

	c.wireHandlers()

	logger.Info("container initialized",
		"driver", c.DBDriver,
		"snapshot_cache", c.SnapshotCache != nil,
		"broker", c.rabbit != nil,
		"caldav", c.CalendarPublisher != nil,
	)
	return c, nil
}

// NewInMemoryContainer wires the application on in-memory repositories and
// an in-process bus. Nothing is persisted.
func NewInMemoryContainer(cfg *config.Config, logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = &config.Config{
			AppEnv:              "development",
			CleaningSlotMinutes: 15,
			ShowStartWindow:     config.Window{From: 9 * 60, To: 23 * 60},
			PremiereStartWindow: config.Window{From: 18 * 60, To: 21 * 60},
		}
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    observability.NewInMemoryMetrics(),
		Health:     observability.NewHealthRegistry(),
		MovieRepo:  catalogPersistence.NewInMemoryMovieRepository(),
		EventStore: schedulePersistence.NewInMemoryEventStore(),
		OutboxRepo: outbox.NewInMemoryRepository(),
		UnitOfWork: sharedApplication.NoopUnitOfWork{},
	}
	c.EventBus = eventbus.NewInProcessBus(logger)
	c.EventPublisher = c.EventBus
	c.wireHandlers()
	return c
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (database.Connection, error) {
	dbCfg := database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	}
	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("connected to database", "driver", conn.Driver())
	return conn, nil
}

// connectRedis enables the snapshot cache. Outside development an
// unreachable Redis is fatal; in development reads fall back to replay.
func (c *Container) connectRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, snapshot cache disabled", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, snapshot cache disabled", "error", err)
		return nil
	}

	c.RedisClient = client
	c.SnapshotCache = cache.NewRedisSnapshotCache(client, c.Config.SnapshotTTL)
	c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

// connectBroker selects where the outbox publishes: RabbitMQ behind a
// circuit breaker when configured, the in-process bus otherwise.
func (c *Container) connectBroker() error {
	c.EventBus = eventbus.NewInProcessBus(c.Logger)

	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = c.EventBus
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return err
		}
		c.Logger.Warn("RabbitMQ not available, using in-process bus", "error", err)
		c.EventPublisher = c.EventBus
		return nil
	}

	c.rabbit = publisher
	c.EventPublisher = eventbus.NewBreakerPublisher(publisher, eventbus.BreakerConfig{
		FailureThreshold: convert.IntToUint32Clamped(max(c.Config.PublisherBreakerFailures, 1)),
		Timeout:          c.Config.PublisherBreakerTimeout,
		MaxRequests:      1,
	}, c.Logger)
	c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(publisher.Ping))
	return nil
}

func (c *Container) wireHandlers() {
	cfg := c.Config

	var snapshots services.SnapshotCache
	if c.SnapshotCache != nil {
		snapshots = c.SnapshotCache
	}

	c.AddMovieHandler = catalogCommands.NewAddMovieHandler(c.MovieRepo, c.Metrics, c.Logger)
	c.ListMoviesHandler = catalogQueries.NewListMoviesHandler(c.MovieRepo)

	c.ScheduleLoader = services.NewScheduleLoader(c.EventStore, snapshots, c.Metrics, c.Logger)
	c.ScheduleWriter = scheduleCommands.NewScheduleWriter(c.UnitOfWork, c.EventStore, c.OutboxRepo, c.ScheduleLoader, c.Metrics, c.Logger)
	c.ScheduleShowHandler = scheduleCommands.NewScheduleShowHandler(
		c.ScheduleWriter,
		c.MovieRepo,
		cfg.CleaningSlotMinutes,
		c.Metrics,
		c.Logger,
		services.ShowStartTimeValidator(services.WindowFromConfig(cfg.ShowStartWindow)),
		services.PremiereStartTimeValidator(services.WindowFromConfig(cfg.PremiereStartWindow)),
	)
	c.ScheduleUnavailabilityHandler = scheduleCommands.NewScheduleUnavailabilityHandler(c.ScheduleWriter, c.Metrics, c.Logger)
	c.CancelRoomEventHandler = scheduleCommands.NewCancelRoomEventHandler(c.ScheduleWriter, c.Metrics, c.Logger)
	c.GetRoomScheduleHandler = scheduleQueries.NewGetRoomScheduleHandler(c.ScheduleLoader, c.MovieRepo)
	c.ListRoomsHandler = scheduleQueries.NewListRoomsHandler(c.ScheduleLoader)

	if cfg.CalDAVEnabled() {
		c.CalendarPublisher = caldav.NewPublisher(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, c.Logger).
			WithCalendarPath(cfg.CalDAVCalendarPath).
			WithMetrics(c.Metrics)
		c.CalendarSubscriber = scheduleSubs.NewCalendarSubscriber(c.GetRoomScheduleHandler, c.CalendarPublisher, c.Logger)
		c.EventBus.Subscribe("caldav", scheduleSubs.RoomEventPattern, c.CalendarSubscriber.Handle)
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     orDefault(cfg.OutboxPollInterval, 500*time.Millisecond),
		BatchSize:        max(cfg.OutboxBatchSize, 1),
		MaxRetries:       max(cfg.OutboxMaxRetries, 1),
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}, c.Logger)
	c.OutboxProcessor.SetMetrics(c.Metrics)
}

// NewCalendarConsumer returns a broker consumer that feeds the calendar
// subscriber when events leave through RabbitMQ. It returns nil when the
// outbox already delivers to the in-process bus or no calendar is set up.
func (c *Container) NewCalendarConsumer() (*eventbus.RabbitMQConsumer, error) {
	if c.rabbit == nil || c.CalendarSubscriber == nil {
		return nil, nil
	}
	consumer, err := eventbus.NewRabbitMQConsumer(c.Config.RabbitMQURL, c.Config.RabbitMQQueue, c.EventBus, c.Logger)
	if err != nil {
		return nil, err
	}
	if err := consumer.Bind(scheduleSubs.RoomEventPattern); err != nil {
		_ = consumer.Close()
		return nil, err
	}
	return consumer, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
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
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
