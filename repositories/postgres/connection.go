package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/upb/skillboard/backend/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check if we can query
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- People table
		CREATE TABLE IF NOT EXISTS people (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			title VARCHAR(255),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Organizations table
		CREATE TABLE IF NOT EXISTS organizations (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(100) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Skills table
		CREATE TABLE IF NOT EXISTS skills (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			category VARCHAR(100),
			description TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Skill applications join table (person applies skill at organization)
		CREATE TABLE IF NOT EXISTS skill_applications (
			id UUID PRIMARY KEY,
			person_id UUID NOT NULL REFERENCES people(id) ON DELETE CASCADE,
			skill_id UUID NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			proficiency VARCHAR(50),
			notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(person_id, skill_id, organization_id)
		);

		-- Append-only change log populated by the capture triggers and the
		-- CRUD write paths
		CREATE TABLE IF NOT EXISTS change_log (
			id BIGSERIAL PRIMARY KEY,
			event_type VARCHAR(10) NOT NULL,
			entity_type VARCHAR(100) NOT NULL,
			entity_id VARCHAR(255) NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			changes JSONB,
			description TEXT,
			metadata JSONB
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_skill_applications_person_id ON skill_applications(person_id);
		CREATE INDEX IF NOT EXISTS idx_skill_applications_skill_id ON skill_applications(skill_id);
		CREATE INDEX IF NOT EXISTS idx_change_log_entity ON change_log(entity_type, entity_id);
		CREATE INDEX IF NOT EXISTS idx_change_log_timestamp ON change_log(timestamp);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized")
	return nil
}

// InitChangeCapture installs the NOTIFY trigger that pushes a change signal
// whenever a change-log row lands. The payload is advisory only; subscribers
// re-fetch the window on every signal.
func (db *DB) InitChangeCapture(ctx context.Context, channel string) error {
	capture := fmt.Sprintf(`
		CREATE OR REPLACE FUNCTION notify_change_log() RETURNS TRIGGER AS $$
		BEGIN
			PERFORM pg_notify('%s', json_build_object(
				'entity_type', NEW.entity_type,
				'entity_id', NEW.entity_id
			)::text);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;

		DROP TRIGGER IF EXISTS change_log_notify ON change_log;
		CREATE TRIGGER change_log_notify
			AFTER INSERT ON change_log
			FOR EACH ROW EXECUTE FUNCTION notify_change_log();
	`, channel)

	if _, err := db.ExecContext(ctx, capture); err != nil {
		return fmt.Errorf("failed to install change capture trigger: %w", err)
	}

	db.logger.Info("change capture trigger installed", zap.String("channel", channel))
	return nil
}
