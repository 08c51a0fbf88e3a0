package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/studyhub/studyhub-api/internal/audit"
	"github.com/studyhub/studyhub-api/internal/config"
	"github.com/studyhub/studyhub-api/internal/events"
	"github.com/studyhub/studyhub-api/internal/platform/postgres"
	"github.com/studyhub/studyhub-api/internal/platform/rediscache"
	"github.com/studyhub/studyhub-api/internal/service/analytics"
	"github.com/studyhub/studyhub-api/internal/service/auth"
	"github.com/studyhub/studyhub-api/internal/service/progress"
	"github.com/studyhub/studyhub-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	recordStore   store.StudyRecordStore
	progressStore store.ProgressStore
	auditLogStore store.AuditLogStore
	catalog       store.MaterialCatalog
	txManager     store.Transactioner

	// Service interfaces
	jwtService       auth.JWTService
	progressService  progress.Service
	analyticsService analytics.Service

	// Event system
	eventEmitter events.EventEmitter

	// Optional analytics cache; nil when Redis is not configured
	cache *rediscache.Cache
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize stores
	app.recordStore = postgres.NewStudyRecordStore(db, logger)
	app.progressStore = postgres.NewProgressStore(db, logger)
	app.auditLogStore = postgres.NewAuditLogStore(db, logger)
	app.catalog = postgres.NewMaterialCatalog(db, logger)
	app.txManager = postgres.NewTxManager(db, logger)

	// Initialize event emitter and register the audit trail recorder
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(audit.NewRecorder(app.auditLogStore, logger))
	app.eventEmitter = emitter

	// Initialize the write-side service
	app.progressService = progress.NewService(
		app.catalog,
		app.progressStore,
		app.txManager,
		app.eventEmitter,
		logger,
	)

	// The reporting zone buckets daily activity series. An unset zone
	// means UTC.
	location := time.UTC
	if cfg.Analytics.TimeZone != "" {
		location, err = time.LoadLocation(cfg.Analytics.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("invalid analytics time zone %q: %w", cfg.Analytics.TimeZone, err)
		}
	}

	// The analytics cache is optional; without Redis every query
	// recomputes from the stores.
	var analyticsCache analytics.Cache
	if cfg.Redis.URL != "" {
		app.cache, err = rediscache.New(cfg.Redis.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		analyticsCache = app.cache
		logger.Info("Analytics cache enabled",
			"ttl_seconds", cfg.Analytics.CacheTTLSeconds)
	}

	app.analyticsService = analytics.NewService(
		app.progressStore,
		app.recordStore,
		location,
		analyticsCache,
		time.Duration(cfg.Analytics.CacheTTLSeconds)*time.Second,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("Error closing cache connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
