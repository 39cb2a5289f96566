package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/repositories"
	"go.uber.org/zap"
)

// PersonRepository implements the repositories.PersonRepository interface
type PersonRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(db *DB, logger *zap.Logger) repositories.PersonRepository {
	return &PersonRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new person
func (r *PersonRepository) Create(ctx context.Context, person *models.Person) error {
	query := `
		INSERT INTO people (id, name, email, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		person.ID,
		person.Name,
		person.Email,
		person.Title,
		person.CreatedAt,
		person.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}

	r.logger.Debug("person created", zap.String("id", person.ID.String()), zap.String("name", person.Name))
	return nil
}

// GetByID retrieves a person by ID
func (r *PersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	query := `
		SELECT id, name, email, title, created_at, updated_at
		FROM people
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	person := &models.Person{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&person.ID,
		&person.Name,
		&person.Email,
		&person.Title,
		&person.CreatedAt,
		&person.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("person not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	return person, nil
}

// List retrieves all people for reference resolution
func (r *PersonRepository) List(ctx context.Context) ([]*models.Person, error) {
	query := `
		SELECT id, name, email, title, created_at, updated_at
		FROM people
		ORDER BY name
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []*models.Person
	for rows.Next() {
		person := &models.Person{}
		err := rows.Scan(
			&person.ID,
			&person.Name,
			&person.Email,
			&person.Title,
			&person.CreatedAt,
			&person.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating person rows: %w", err)
	}

	return people, nil
}

// Update updates a person
func (r *PersonRepository) Update(ctx context.Context, person *models.Person) error {
	query := `
		UPDATE people
		SET name = $2,
		    email = $3,
		    title = $4,
		    updated_at = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		person.ID,
		person.Name,
		person.Email,
		person.Title,
		person.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("person not found: %s", person.ID)
	}

	r.logger.Debug("person updated", zap.String("id", person.ID.String()))
	return nil
}

// Delete deletes a person
func (r *PersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM people WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("person not found: %s", id)
	}

	r.logger.Debug("person deleted", zap.String("id", id.String()))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *PersonRepository) WithTx(tx repositories.Transaction) repositories.PersonRepository {
	return &PersonRepository{
		db:     r.db,
		logger: r.logger,
	}
}
