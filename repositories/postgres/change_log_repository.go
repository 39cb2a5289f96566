package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/repositories"
	"go.uber.org/zap"
)

// ChangeLogRepository implements the repositories.ChangeLogRepository interface
type ChangeLogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewChangeLogRepository creates a new change log repository
func NewChangeLogRepository(db *DB, logger *zap.Logger) repositories.ChangeLogRepository {
	return &ChangeLogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends a new change-log row. The id and timestamp default from the
// database when unset.
func (r *ChangeLogRepository) Insert(ctx context.Context, event *models.ChangeEvent) error {
	query := `
		INSERT INTO change_log (
			event_type, entity_type, entity_id, user_id, timestamp,
			changes, description, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	changes, err := event.MarshalChanges()
	if err != nil {
		return fmt.Errorf("failed to marshal changes: %w", err)
	}
	metadata, err := event.MarshalMetadata()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	executor := GetExecutor(ctx, r.db)
	err = executor.QueryRowContext(ctx, query,
		event.EventType,
		event.EntityType,
		event.EntityID,
		event.UserID,
		event.Timestamp,
		nullableJSON(changes),
		nullableString(event.Description),
		nullableJSON(metadata),
	).Scan(&event.ID)

	if err != nil {
		return fmt.Errorf("failed to insert change event: %w", err)
	}

	r.logger.Debug("change event inserted",
		zap.Int64("id", event.ID),
		zap.String("event_type", string(event.EventType)),
		zap.String("entity_type", event.EntityType))
	return nil
}

// GetByID retrieves a change event by id
func (r *ChangeLogRepository) GetByID(ctx context.Context, id int64) (*models.ChangeEvent, error) {
	query := `
		SELECT id, event_type, entity_type, entity_id, user_id, timestamp,
		       changes, description, metadata
		FROM change_log
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	event, err := scanChangeEvent(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("change event not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get change event: %w", err)
	}

	return event, nil
}

// GetByEntity retrieves the most recent rows for one entity, newest first
func (r *ChangeLogRepository) GetByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*models.ChangeEvent, error) {
	query := `
		SELECT id, event_type, entity_type, entity_id, user_id, timestamp,
		       changes, description, metadata
		FROM change_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY id DESC
		LIMIT $3
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query change events: %w", err)
	}
	defer rows.Close()

	return collectChangeEvents(rows)
}

// GetRecent retrieves the most recent rows across all entities, newest first
func (r *ChangeLogRepository) GetRecent(ctx context.Context, limit int) ([]*models.ChangeEvent, error) {
	query := `
		SELECT id, event_type, entity_type, entity_id, user_id, timestamp,
		       changes, description, metadata
		FROM change_log
		ORDER BY id DESC
		LIMIT $1
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query change events: %w", err)
	}
	defer rows.Close()

	return collectChangeEvents(rows)
}

// WithTx returns a new repository instance bound to the transaction
func (r *ChangeLogRepository) WithTx(tx repositories.Transaction) repositories.ChangeLogRepository {
	return &ChangeLogRepository{
		db:     r.db,
		logger: r.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanChangeEvent scans one change-log row. Malformed JSONB payloads decode
// to empty values instead of failing the row.
func scanChangeEvent(row rowScanner) (*models.ChangeEvent, error) {
	event := &models.ChangeEvent{}
	var changes, metadata []byte
	var description sql.NullString

	err := row.Scan(
		&event.ID,
		&event.EventType,
		&event.EntityType,
		&event.EntityID,
		&event.UserID,
		&event.Timestamp,
		&changes,
		&description,
		&metadata,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		event.Description = description.String
	}
	event.DecodeChanges(changes)
	event.DecodeMetadata(metadata)

	return event, nil
}

func collectChangeEvents(rows *sql.Rows) ([]*models.ChangeEvent, error) {
	var events []*models.ChangeEvent
	for rows.Next() {
		event, err := scanChangeEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change events: %w", err)
	}

	return events, nil
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
