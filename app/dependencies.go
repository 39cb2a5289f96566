package app

import (
	"context"
	"fmt"

	"github.com/upb/skillboard/backend/config"
	"github.com/upb/skillboard/backend/middleware"
	"github.com/upb/skillboard/backend/repositories"
	"github.com/upb/skillboard/backend/repositories/postgres"
	"github.com/upb/skillboard/backend/services/classify"
	"github.com/upb/skillboard/backend/services/directory"
	"github.com/upb/skillboard/backend/services/format"
	"github.com/upb/skillboard/backend/services/noise"
	"github.com/upb/skillboard/backend/services/resolver"
	"github.com/upb/skillboard/backend/services/timeline"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies following the GrantPulse pattern.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Change capture
	ChangeListener repositories.ChangeListener

	// Services
	Directory *directory.Service
	Resolver  *resolver.Service
	Timeline  *timeline.Service

	// Middleware
	ActorMiddleware *middleware.ActorMiddleware
}

// NewDependencies creates and wires up all application dependencies.
// This follows the GrantPulse pattern of centralized dependency injection.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	deps.initRepositories()

	// Initialize the timeline pipeline
	deps.initServices(cfg)

	deps.ActorMiddleware = middleware.NewActorMiddleware(logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	// Test the connection
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Create tables and install the change-capture triggers
	if err := factory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()
	d.Repos = repos
	d.TxManager = d.RepoFactory.GetTransactionManager()
	d.ChangeListener = d.RepoFactory.NewChangeListener()

	d.Logger.Info("repositories initialized")
}

// initServices wires the feed pipeline: resolver -> classifier -> filter ->
// grouper -> formatter, driven by the timeline service
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Directory = directory.NewService(d.Repos, d.TxManager, d.Logger)

	cache := resolver.NewReferenceCache(cfg.Timeline.ReferenceCacheSize, cfg.Timeline.ReferenceCacheTTL)
	d.Resolver = resolver.NewService(d.Repos.People, d.Repos.Organizations, d.Repos.Skills, cache, d.Logger)

	classifier := classify.NewClassifier(d.Logger)
	filter := noise.NewFilter(noise.Config{
		HousekeepingFields: cfg.Timeline.HousekeepingFields,
		CoreEntityTypes:    cfg.Timeline.CoreEntityTypes,
	}, d.Logger)
	grouper := timeline.NewGrouper(classifier, filter, cfg.Timeline.CorrelationWindow, d.Logger)
	formatter := format.NewFormatter(d.Resolver, cfg.Timeline.DisplayValueBudget, d.Logger)

	d.Timeline = timeline.NewService(d.Repos.ChangeLog, d.Resolver, grouper, formatter, cfg.Timeline, d.Logger)

	d.Logger.Info("timeline pipeline initialized")
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Stop the change-capture subscription first so no recompute races the
	// connection close
	if d.ChangeListener != nil {
		if err := d.ChangeListener.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close change listener: %w", err))
		}
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
