package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/skillboard/backend/models"
)

// TransactionManager manages database transactions following the GrantPulse pattern
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// ChangeLogRepository handles the append-only change-log emitted by the
// trigger-based audit mechanism. Rows are immutable once inserted.
type ChangeLogRepository interface {
	// Insert appends a new change-log row
	Insert(ctx context.Context, event *models.ChangeEvent) error

	// GetByID retrieves a change event by id
	GetByID(ctx context.Context, id int64) (*models.ChangeEvent, error)

	// GetByEntity retrieves the most recent rows for one entity, newest first
	GetByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*models.ChangeEvent, error)

	// GetRecent retrieves the most recent rows across all entities, newest first
	GetRecent(ctx context.Context, limit int) ([]*models.ChangeEvent, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) ChangeLogRepository
}

// PersonRepository handles person reference and directory data
type PersonRepository interface {
	// Create creates a new person
	Create(ctx context.Context, person *models.Person) error

	// GetByID retrieves a person by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error)

	// List retrieves all people (at least id+name for reference resolution)
	List(ctx context.Context) ([]*models.Person, error)

	// Update updates a person
	Update(ctx context.Context, person *models.Person) error

	// Delete deletes a person
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) PersonRepository
}

// OrganizationRepository handles organization reference data
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, org *models.Organization) error

	// GetByID retrieves an organization by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)

	// List retrieves all organizations
	List(ctx context.Context) ([]*models.Organization, error)

	// Update updates an organization
	Update(ctx context.Context, org *models.Organization) error

	// Delete deletes an organization
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) OrganizationRepository
}

// SkillRepository handles skill reference data
type SkillRepository interface {
	// Create creates a new skill
	Create(ctx context.Context, skill *models.Skill) error

	// GetByID retrieves a skill by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error)

	// List retrieves all skills
	List(ctx context.Context) ([]*models.Skill, error)

	// Update updates a skill
	Update(ctx context.Context, skill *models.Skill) error

	// Delete deletes a skill
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) SkillRepository
}

// SkillApplicationRepository handles the person/skill/organization join rows
type SkillApplicationRepository interface {
	// Create creates a new skill application
	Create(ctx context.Context, app *models.SkillApplication) error

	// GetByID retrieves a skill application by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.SkillApplication, error)

	// GetByPersonID retrieves all skill applications for a person
	GetByPersonID(ctx context.Context, personID uuid.UUID) ([]*models.SkillApplication, error)

	// Delete deletes a skill application
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) SkillApplicationRepository
}

// ChangeNotification is the advisory payload delivered on the change-capture
// subscription. It is not required to be complete; consumers always re-fetch.
type ChangeNotification struct {
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
}

// ChangeListener is the push half of the change-log contract: it signals
// "something changed" without promising a trustworthy payload.
type ChangeListener interface {
	// Start begins listening; safe to call once
	Start(ctx context.Context) error

	// Notifications returns the channel change signals are delivered on.
	// The channel is closed when the listener shuts down.
	Notifications() <-chan ChangeNotification

	// Close stops the listener and releases its connection
	Close() error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	People            PersonRepository
	Organizations     OrganizationRepository
	Skills            SkillRepository
	SkillApplications SkillApplicationRepository
	ChangeLog         ChangeLogRepository
}
