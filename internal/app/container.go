// Package app wires repositories, services and handlers for the
// configured database driver.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/quickcut/backend/adapter/api"
	"github.com/quickcut/backend/internal/availability"
	billingApplication "github.com/quickcut/backend/internal/billing/application"
	billingDomain "github.com/quickcut/backend/internal/billing/domain"
	"github.com/quickcut/backend/internal/billing/infrastructure/payments"
	billingPersistence "github.com/quickcut/backend/internal/billing/infrastructure/persistence"
	bookingCommands "github.com/quickcut/backend/internal/booking/application/commands"
	bookingQueries "github.com/quickcut/backend/internal/booking/application/queries"
	bookingDomain "github.com/quickcut/backend/internal/booking/domain"
	"github.com/quickcut/backend/internal/booking/infrastructure/cache"
	bookingPersistence "github.com/quickcut/backend/internal/booking/infrastructure/persistence"
	identityCommands "github.com/quickcut/backend/internal/identity/application/commands"
	identityDomain "github.com/quickcut/backend/internal/identity/domain"
	identityPersistence "github.com/quickcut/backend/internal/identity/infrastructure/persistence"
	sharedApplication "github.com/quickcut/backend/internal/shared/application"
	"github.com/quickcut/backend/internal/shared/infrastructure/database"
	"github.com/quickcut/backend/internal/shared/infrastructure/migrations"
	"github.com/quickcut/backend/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/quickcut/backend/internal/shared/infrastructure/persistence"
	"github.com/quickcut/backend/pkg/config"
)

// Container holds the wired application graph.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	SQLiteDB     *sql.DB
	PostgresPool *pgxpool.Pool
	RedisClient  *redis.Client

	UnitOfWork    sharedApplication.UnitOfWork
	OutboxRepo    outbox.Repository
	Users         identityDomain.UserRepository
	Subscriptions billingDomain.SubscriptionRepository
	Intents       billingDomain.PaymentIntentRepository
	Enrollments   billingDomain.EnrollmentRepository
	Bookings      bookingDomain.BookingRepository

	Payments *billingApplication.PaymentService
	Sweeper  *billingApplication.SubscriptionSweeper

	CreateBooking     *bookingCommands.CreateBookingHandler
	TransitionBooking *bookingCommands.TransitionBookingHandler
	BookableBarbers   *bookingQueries.ListBookableBarbersHandler
	Dashboard         *bookingQueries.DashboardSummaryHandler
	ListBookings      *bookingQueries.ListBookingsHandler
	SetAvailability   *identityCommands.SetAvailabilityHandler
}

// New builds the container, opening database and cache connections and
// running migrations.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{Config: cfg, Logger: logger}

	if cfg.UseSQLite() {
		if err := c.openSQLite(ctx, cfg); err != nil {
			return nil, err
		}
	} else {
		if err := c.openPostgres(ctx, cfg); err != nil {
			return nil, err
		}
	}

	var (
		summaryCache bookingQueries.SummaryCache
		invalidator  bookingCommands.SummaryInvalidator
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		c.RedisClient = redis.NewClient(opts)
		redisCache := cache.NewRedisSummaryCache(c.RedisClient, logger)
		summaryCache = redisCache
		invalidator = redisCache
	}

	processor := payments.NewStripeProcessor(payments.Config{
		APIKey:     cfg.StripeAPIKey,
		SuccessURL: cfg.StripeSuccessURL,
		CancelURL:  cfg.StripeCancelURL,
	}, logger)

	c.Payments = billingApplication.NewPaymentService(
		processor, c.Intents, c.Subscriptions, c.Enrollments,
		c.OutboxRepo, c.UnitOfWork, logger,
		cfg.PaymentPollInterval, cfg.PaymentPollMaxAttempts,
	)
	c.Sweeper = billingApplication.NewSubscriptionSweeper(c.Subscriptions, c.OutboxRepo, c.UnitOfWork, logger)

	gate := availability.NewGate()
	c.CreateBooking = bookingCommands.NewCreateBookingHandler(
		c.Users, c.Subscriptions, c.Bookings, gate, c.OutboxRepo, c.UnitOfWork, invalidator)
	c.TransitionBooking = bookingCommands.NewTransitionBookingHandler(
		c.Bookings, c.OutboxRepo, c.UnitOfWork, invalidator)
	c.BookableBarbers = bookingQueries.NewListBookableBarbersHandler(c.Users, c.Subscriptions, gate)
	c.Dashboard = bookingQueries.NewDashboardSummaryHandler(c.Bookings, summaryCache, logger)
	c.ListBookings = bookingQueries.NewListBookingsHandler(c.Bookings)
	c.SetAvailability = identityCommands.NewSetAvailabilityHandler(c.Users, c.OutboxRepo, c.UnitOfWork)

	return c, nil
}

func (c *Container) openSQLite(ctx context.Context, cfg *config.Config) error {
	path := cfg.SQLitePath
	if path == "" {
		path = database.DefaultSQLitePath()
	}

	db, err := database.OpenSQLite(ctx, path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	c.SQLiteDB = db
	c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)
	c.OutboxRepo = outbox.NewSQLiteRepository(db)
	c.Users = identityPersistence.NewSQLiteUserRepository(db)
	c.Subscriptions = billingPersistence.NewSQLiteSubscriptionRepository(db)
	c.Intents = billingPersistence.NewSQLitePaymentIntentRepository(db)
	c.Enrollments = billingPersistence.NewSQLiteEnrollmentRepository(db)
	c.Bookings = bookingPersistence.NewSQLiteBookingRepository(db)
	return nil
}

func (c *Container) openPostgres(ctx context.Context, cfg *config.Config) error {
	pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	c.PostgresPool = pool
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)
	c.OutboxRepo = outbox.NewPostgresRepository(pool)
	c.Users = identityPersistence.NewPostgresUserRepository(pool)
	c.Subscriptions = billingPersistence.NewPostgresSubscriptionRepository(pool)
	c.Intents = billingPersistence.NewPostgresPaymentIntentRepository(pool)
	c.Enrollments = billingPersistence.NewPostgresEnrollmentRepository(pool)
	c.Bookings = bookingPersistence.NewPostgresBookingRepository(pool)
	return nil
}

// APIServer builds the HTTP server on top of the container.
func (c *Container) APIServer() *api.Server {
	auth := api.NewAuthenticator(c.Config.JWTSecret)
	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = c.Config.HTTPAddr

	return api.NewServer(
		serverCfg,
		auth,
		api.NewBookingHandler(c.CreateBooking, c.TransitionBooking, c.BookableBarbers, c.Dashboard, c.ListBookings),
		api.NewBillingHandler(c.Payments),
		api.NewIdentityHandler(c.SetAvailability),
		c.Logger,
	)
}

// Close releases all connections.
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("close redis", "error", err)
		}
	}
	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("close sqlite", "error", err)
		}
	}
	if c.PostgresPool != nil {
		c.PostgresPool.Close()
	}
}
