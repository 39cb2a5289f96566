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

// SkillApplicationRepository implements the repositories.SkillApplicationRepository interface
type SkillApplicationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSkillApplicationRepository creates a new skill application repository
func NewSkillApplicationRepository(db *DB, logger *zap.Logger) repositories.SkillApplicationRepository {
	return &SkillApplicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new skill application
func (r *SkillApplicationRepository) Create(ctx context.Context, app *models.SkillApplication) error {
	query := `
		INSERT INTO skill_applications (
			id, person_id, skill_id, organization_id, proficiency, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		app.ID,
		app.PersonID,
		app.SkillID,
		app.OrganizationID,
		app.Proficiency,
		app.Notes,
		app.CreatedAt,
		app.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create skill application: %w", err)
	}

	r.logger.Debug("skill application created",
		zap.String("id", app.ID.String()),
		zap.String("person_id", app.PersonID.String()),
		zap.String("skill_id", app.SkillID.String()))
	return nil
}

// GetByID retrieves a skill application by ID
func (r *SkillApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SkillApplication, error) {
	query := `
		SELECT id, person_id, skill_id, organization_id, proficiency, notes,
		       created_at, updated_at
		FROM skill_applications
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	app := &models.SkillApplication{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&app.ID,
		&app.PersonID,
		&app.SkillID,
		&app.OrganizationID,
		&app.Proficiency,
		&app.Notes,
		&app.CreatedAt,
		&app.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("skill application not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get skill application: %w", err)
	}

	return app, nil
}

// GetByPersonID retrieves all skill applications for a person
func (r *SkillApplicationRepository) GetByPersonID(ctx context.Context, personID uuid.UUID) ([]*models.SkillApplication, error) {
	query := `
		SELECT id, person_id, skill_id, organization_id, proficiency, notes,
		       created_at, updated_at
		FROM skill_applications
		WHERE person_id = $1
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skill applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.SkillApplication
	for rows.Next() {
		app := &models.SkillApplication{}
		err := rows.Scan(
			&app.ID,
			&app.PersonID,
			&app.SkillID,
			&app.OrganizationID,
			&app.Proficiency,
			&app.Notes,
			&app.CreatedAt,
			&app.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skill application rows: %w", err)
	}

	return apps, nil
}

// Delete deletes a skill application
func (r *SkillApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM skill_applications WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete skill application: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("skill application not found: %s", id)
	}

	r.logger.Debug("skill application deleted", zap.String("id", id.String()))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *SkillApplicationRepository) WithTx(tx repositories.Transaction) repositories.SkillApplicationRepository {
	return &SkillApplicationRepository{
		db:     r.db,
		logger: r.logger,
	}
}
