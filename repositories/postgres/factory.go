package postgres

import (
	"context"

	"github.com/upb/skillboard/backend/config"
	"github.com/upb/skillboard/backend/repositories"
	"go.uber.org/zap"
)

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db     *DB
	cfg    *config.Config
	logger *zap.Logger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	return &RepositoryFactory{db: db, cfg: cfg, logger: logger}, nil
}

// InitSchema initializes the database schema and the change-capture trigger
func (f *RepositoryFactory) InitSchema(ctx context.Context) error {
	if err := f.db.InitSchema(ctx); err != nil {
		return err
	}
	return f.db.InitChangeCapture(ctx, f.cfg.Timeline.NotifyChannel)
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		People:            NewPersonRepository(f.db, f.logger),
		Organizations:     NewOrganizationRepository(f.db, f.logger),
		Skills:            NewSkillRepository(f.db, f.logger),
		SkillApplications: NewSkillApplicationRepository(f.db, f.logger),
		ChangeLog:         NewChangeLogRepository(f.db, f.logger),
	}
}

// NewChangeListener creates the LISTEN/NOTIFY subscription for the
// change-log channel
func (f *RepositoryFactory) NewChangeListener() repositories.ChangeListener {
	return NewChangeListener(f.cfg.Database.DSN(), f.cfg.Timeline.NotifyChannel, f.logger)
}

// GetTransactionManager returns a transaction manager
func (f *RepositoryFactory) GetTransactionManager() repositories.TransactionManager {
	return NewTransactionManager(f.db, f.logger)
}

// GetDB returns the database connection
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// Close closes the database connection
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}
