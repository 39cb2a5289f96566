package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/repositories"
	"github.com/upb/skillboard/backend/services"
	"go.uber.org/zap"
)

// Service owns the directory entities: people, organizations, skills, and
// the skill-application join rows. Every write runs in one transaction with
// its change-log row, so the activity feed and the data can never disagree.
// The application-level rows mirror what the database triggers emit; both
// paths land in the same change_log table.
type Service struct {
	repos  *repositories.Repositories
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewService creates a new directory service
func NewService(repos *repositories.Repositories, txMgr repositories.TransactionManager, logger *zap.Logger) *Service {
	return &Service{
		repos:  repos,
		txMgr:  txMgr,
		logger: logger,
	}
}

// CreatePerson creates a person and records the change
func (s *Service) CreatePerson(ctx context.Context, person *models.Person, actorID string) error {
	if person.Name == "" {
		return services.ErrInvalidInput
	}

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.People.WithTx(tx).Create(ctx, person); err != nil {
			return err
		}
		event := models.NewChangeEvent(models.EventInsert, models.Person{}.TableName(), person.ID.String(), actorID).
			WithDescription(fmt.Sprintf("Created person '%s'", person.Name)).
			WithMetadata(map[string]interface{}{"name": person.Name})
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// GetPerson retrieves a person by id
func (s *Service) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	return s.repos.People.GetByID(ctx, id)
}

// ListPeople retrieves all people
func (s *Service) ListPeople(ctx context.Context) ([]*models.Person, error) {
	return s.repos.People.List(ctx)
}

// UpdatePerson applies the updated fields and records the field-level diff
func (s *Service) UpdatePerson(ctx context.Context, updated *models.Person, actorID string) error {
	existing, err := s.repos.People.GetByID(ctx, updated.ID)
	if err != nil {
		return err
	}

	changes := diffFields(map[string][2]interface{}{
		"name":  {existing.Name, updated.Name},
		"email": {existing.Email, updated.Email},
		"title": {existing.Title, updated.Title},
	})

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.People.WithTx(tx).Update(ctx, updated); err != nil {
			return err
		}
		event := models.NewChangeEvent(models.EventUpdate, models.Person{}.TableName(), updated.ID.String(), actorID).
			WithChanges(changes).
			WithMetadata(map[string]interface{}{"name": updated.Name})
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// DeletePerson deletes a person and records the change
func (s *Service) DeletePerson(ctx context.Context, id uuid.UUID, actorID string) error {
	existing, err := s.repos.People.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.People.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		event := models.NewChangeEvent(models.EventDelete, models.Person{}.TableName(), id.String(), actorID).
			WithDescription(fmt.Sprintf("Deleted person '%s'", existing.Name)).
			WithMetadata(map[string]interface{}{"name": existing.Name})
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// CreateOrganization creates an organization and records the change
func (s *Service) CreateOrganization(ctx context.Context, org *models.Organization, actorID string) error {
	if org.Name == "" {
		return services.ErrInvalidInput
	}

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.Organizations.WithTx(tx).Create(ctx, org); err != nil {
			return err
		}
		event := models.NewChangeEvent(models.EventInsert, models.Organization{}.TableName(), org.ID.String(), actorID).
			WithDescription(fmt.Sprintf("Created organization '%s'", org.Name)).
			WithMetadata(map[string]interface{}{"name": org.Name})
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// GetOrganization retrieves an organization by id
func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return s.repos.Organizations.GetByID(ctx, id)
}

// ListOrganizations retrieves all organizations
func (s *Service) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	return s.repos.Organizations.List(ctx)
}

// UpdateOrganization applies the updated fields and records the diff
func (s *Service) UpdateOrganization(ctx context.Context, updated *models.Organization, actorID string) error {
	existing, err := s.repos.Organizations.GetByID(ctx, updated.ID)
	if err != nil {
		return err
	}

	changes := diffFields(map[string][2]interface{}{
		"name": {existing.Name, updated.Name},
		"slug": {existing.Slug, updated.Slug},
	})

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.Organizations.WithTx(tx).Update(ctx, updated); err != nil {
			return err
		}
		event := models.NewChangeEvent(models.EventUpdate, models.Organization{}.TableName(), updated.ID.String(), actorID).
			WithChanges(changes).
			WithMetadata(map[string]interface{}{"name": updated.Name})
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// DeleteOrganization deletes an organization and records the change
func (s *Service) DeleteOrganization(ctx context.Context, id uuid.UUID, actorID string) error {
	existing, err := s.repos.Organizations.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.Organizations.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		event := models.NewChangeEvent(models.EventDelete, models.Organization{}.TableName(), id.String(), actorID).
			WithDescription(fmt.Sprintf("Deleted organization '%s'", existing.Name)).
			WithMetadata(map[string]interface{}{"name": existing.Name})
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// CreateSkill creates a skill and records the change
func (s *Service) CreateSkill(ctx context.Context, skill *models.Skill, actorID string) error {
	if skill.Name == "" {
		return services.ErrInvalidInput
	}

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.Skills.WithTx(tx).Create(ctx, skill); err != nil {
			return err
		}
		event := models.NewChangeEvent(models.EventInsert, models.Skill{}.TableName(), skill.ID.String(), actorID).
			WithDescription(fmt.Sprintf("Created skill '%s'", skill.Name)).
			WithMetadata(map[string]interface{}{"name": skill.Name})
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// GetSkill retrieves a skill by id
func (s *Service) GetSkill(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	return s.repos.Skills.GetByID(ctx, id)
}

// ListSkills retrieves all skills
func (s *Service) ListSkills(ctx context.Context) ([]*models.Skill, error) {
	return s.repos.Skills.List(ctx)
}

// UpdateSkill applies the updated fields and records the diff
func (s *Service) UpdateSkill(ctx context.Context, updated *models.Skill, actorID string) error {
	existing, err := s.repos.Skills.GetByID(ctx, updated.ID)
	if err != nil {
		return err
	}

	changes := diffFields(map[string][2]interface{}{
		"name":        {existing.Name, updated.Name},
		"category":    {existing.Category, updated.Category},
		"description": {existing.Description, updated.Description},
	})

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.Skills.WithTx(tx).Update(ctx, updated); err != nil {
			return err
		}
		event := models.NewChangeEvent(models.EventUpdate, models.Skill{}.TableName(), updated.ID.String(), actorID).
			WithChanges(changes).
			WithMetadata(map[string]interface{}{"name": updated.Name})
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// DeleteSkill deletes a skill and records the change
func (s *Service) DeleteSkill(ctx context.Context, id uuid.UUID, actorID string) error {
	existing, err := s.repos.Skills.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.Skills.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		event := models.NewChangeEvent(models.EventDelete, models.Skill{}.TableName(), id.String(), actorID).
			WithDescription(fmt.Sprintf("Deleted skill '%s'", existing.Name)).
			WithMetadata(map[string]interface{}{"name": existing.Name})
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// ApplySkill records that a person applied a skill at an organization. The
// change-log row carries enough structure that classification never has to
// fall back to text parsing for this path.
func (s *Service) ApplySkill(ctx context.Context, app *models.SkillApplication, actorID string) error {
	skill, err := s.repos.Skills.GetByID(ctx, app.SkillID)
	if err != nil {
		return err
	}
	org, err := s.repos.Organizations.GetByID(ctx, app.OrganizationID)
	if err != nil {
		return err
	}
	if _, err := s.repos.People.GetByID(ctx, app.PersonID); err != nil {
		return err
	}

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.SkillApplications.WithTx(tx).Create(ctx, app); err != nil {
			return err
		}

		description := fmt.Sprintf("Applied %s at %s", skill.Name, org.Name)
		if app.Proficiency != "" {
			description = fmt.Sprintf("Applied %s at %s with %s proficiency", skill.Name, org.Name, app.Proficiency)
		}

		event := models.NewChangeEvent(models.EventInsert, models.SkillApplication{}.TableName(), app.ID.String(), actorID).
			WithDescription(description).
			WithMetadata(map[string]interface{}{
				"skill":        map[string]interface{}{"id": app.SkillID.String(), "name": skill.Name},
				"organization": map[string]interface{}{"id": app.OrganizationID.String(), "name": org.Name},
				"proficiency":  app.Proficiency,
				"notes":        app.Notes,
			})
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// GetSkillApplication retrieves a skill application by id
func (s *Service) GetSkillApplication(ctx context.Context, id uuid.UUID) (*models.SkillApplication, error) {
	return s.repos.SkillApplications.GetByID(ctx, id)
}

// ListSkillApplications retrieves a person's skill applications
func (s *Service) ListSkillApplications(ctx context.Context, personID uuid.UUID) ([]*models.SkillApplication, error) {
	return s.repos.SkillApplications.GetByPersonID(ctx, personID)
}

// RemoveSkillApplication deletes a skill application and records the removal
func (s *Service) RemoveSkillApplication(ctx context.Context, id uuid.UUID, actorID string) error {
	existing, err := s.repos.SkillApplications.GetByID(ctx, id)
	if err != nil {
		return err
	}

	metadata := map[string]interface{}{
		"skill_id":        existing.SkillID.String(),
		"organization_id": existing.OrganizationID.String(),
	}
	if skill, err := s.repos.Skills.GetByID(ctx, existing.SkillID); err == nil {
		metadata["skill"] = map[string]interface{}{"id": skill.ID.String(), "name": skill.Name}
	}

	return services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.repos.SkillApplications.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		event := models.NewChangeEvent(models.EventDelete, models.SkillApplication{}.TableName(), id.String(), actorID).
			WithMetadata(metadata)
		return s.repos.ChangeLog.WithTx(tx).Insert(ctx, event)
	})
}

// diffFields builds the field-level diff for an update, skipping unchanged
// fields. Keys iterate in insertion order of the literal, which Go does not
// guarantee for maps, so callers should not depend on diff ordering.
func diffFields(fields map[string][2]interface{}) []models.FieldChange {
	changes := make([]models.FieldChange, 0, len(fields))
	for field, pair := range fields {
		if fmt.Sprintf("%v", pair[0]) == fmt.Sprintf("%v", pair[1]) {
			continue
		}
		changes = append(changes, models.FieldChange{
			Field:    field,
			OldValue: pair[0],
			NewValue: pair[1],
		})
	}
	return changes
}
