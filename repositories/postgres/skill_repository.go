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

// SkillRepository implements the repositories.SkillRepository interface
type SkillRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSkillRepository creates a new skill repository
func NewSkillRepository(db *DB, logger *zap.Logger) repositories.SkillRepository {
	return &SkillRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new skill
func (r *SkillRepository) Create(ctx context.Context, skill *models.Skill) error {
	query := `
		INSERT INTO skills (id, name, category, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		skill.ID,
		skill.Name,
		skill.Category,
		skill.Description,
		skill.CreatedAt,
		skill.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create skill: %w", err)
	}

	r.logger.Debug("skill created", zap.String("id", skill.ID.String()), zap.String("name", skill.Name))
	return nil
}

// GetByID retrieves a skill by ID
func (r *SkillRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	query := `
		SELECT id, name, category, description, created_at, updated_at
		FROM skills
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	skill := &models.Skill{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&skill.ID,
		&skill.Name,
		&skill.Category,
		&skill.Description,
		&skill.CreatedAt,
		&skill.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("skill not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}

	return skill, nil
}

// List retrieves all skills for reference resolution
func (r *SkillRepository) List(ctx context.Context) ([]*models.Skill, error) {
	query := `
		SELECT id, name, category, description, created_at, updated_at
		FROM skills
		ORDER BY name
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	var skills []*models.Skill
	for rows.Next() {
		skill := &models.Skill{}
		err := rows.Scan(
			&skill.ID,
			&skill.Name,
			&skill.Category,
			&skill.Description,
			&skill.CreatedAt,
			&skill.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, skill)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skill rows: %w", err)
	}

	return skills, nil
}

// Update updates a skill
func (r *SkillRepository) Update(ctx context.Context, skill *models.Skill) error {
	query := `
		UPDATE skills
		SET name = $2,
		    category = $3,
		    description = $4,
		    updated_at = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		skill.ID,
		skill.Name,
		skill.Category,
		skill.Description,
		skill.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update skill: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("skill not found: %s", skill.ID)
	}

	r.logger.Debug("skill updated", zap.String("id", skill.ID.String()))
	return nil
}

// Delete deletes a skill
func (r *SkillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM skills WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete skill: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("skill not found: %s", id)
	}

	r.logger.Debug("skill deleted", zap.String("id", id.String()))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *SkillRepository) WithTx(tx repositories.Transaction) repositories.SkillRepository {
	return &SkillRepository{
		db:     r.db,
		logger: r.logger,
	}
}
