package classify

import (
	"strings"

	"github.com/upb/skillboard/backend/models"
	"go.uber.org/zap"
)

// Classification is the outcome of classifying one change-log row. Target
// references are raw extractions (id and/or name, whichever source supplied
// them); resolution against reference data happens downstream.
type Classification struct {
	Kind            models.EventKind
	PrimaryTarget   *models.EntityReference
	SecondaryTarget *models.EntityReference
	Proficiency     string
	Notes           string
}

// Entity types that unambiguously name relationship/application tables
var (
	skillApplicationTables = map[string]bool{
		"skill_applications": true,
		"person_skills":      true,
		"user_skills":        true,
	}

	assignmentTables = map[string]bool{
		"person_organizations": true,
		"user_organizations":   true,
		"user_customers":       true,
		"assignments":          true,
		"memberships":          true,
	}

	requiredSkillTables = map[string]bool{
		"organization_skills": true,
		"customer_skills":     true,
		"required_skills":     true,
	}
)

// Classifier assigns a semantic kind to raw change events and extracts
// structured entity references from whichever source is most reliable:
// nested metadata, flat metadata aliases, the entity type itself, then
// description text as last resort.
type Classifier struct {
	logger *zap.Logger
}

// NewClassifier creates a new classifier
func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify classifies a single change event. It never fails: ambiguous input
// degrades to the most generic applicable kind and absent references stay
// absent rather than being fabricated.
func (c *Classifier) Classify(event *models.ChangeEvent) Classification {
	text := extractFromDescription(event.Description)
	kind := c.kindOf(event, text)

	out := Classification{Kind: kind}

	skill := c.extractSkill(event, text)
	org := c.extractOrganization(event, text)

	switch kind {
	case models.KindSkillApplication, models.KindSkillRemoval, models.KindRequiredSkillSet:
		out.PrimaryTarget = skill
		out.SecondaryTarget = org
	case models.KindRelationshipAssignment:
		if text.PersonName != "" {
			out.PrimaryTarget = &models.EntityReference{Kind: models.KindUser, Name: text.PersonName}
		}
		out.SecondaryTarget = org
	default:
		// Generic rows still surface whatever was recoverable
		out.PrimaryTarget = skill
		out.SecondaryTarget = org
	}

	rawProficiency := metadataProficiency(event.Metadata)
	if rawProficiency == "" {
		rawProficiency = text.Proficiency
	}
	out.Proficiency = NormalizeProficiency(rawProficiency)
	out.Notes = metadataNotes(event.Metadata)

	return out
}

// kindOf selects the event kind: entity type first, description keywords
// second, generic CRUD kind last
func (c *Classifier) kindOf(event *models.ChangeEvent, text textExtraction) models.EventKind {
	entityType := strings.ToLower(event.EntityType)

	switch {
	case skillApplicationTables[entityType]:
		if event.EventType == models.EventDelete {
			return models.KindSkillRemoval
		}
		return models.KindSkillApplication
	case assignmentTables[entityType]:
		return models.KindRelationshipAssignment
	case requiredSkillTables[entityType]:
		return models.KindRequiredSkillSet
	}

	description := strings.ToLower(event.Description)
	switch {
	case text.Applied, strings.Contains(description, "applied") && strings.Contains(description, " at "):
		return models.KindSkillApplication
	case strings.Contains(description, "required") || strings.Contains(description, "requirement"):
		return models.KindRequiredSkillSet
	case text.Assigned:
		return models.KindRelationshipAssignment
	}

	switch event.EventType {
	case models.EventInsert:
		return models.KindGenericInsert
	case models.EventDelete:
		return models.KindGenericDelete
	default:
		return models.KindGenericUpdate
	}
}

// extractSkill walks the source priority chain for a skill reference
func (c *Classifier) extractSkill(event *models.ChangeEvent, text textExtraction) *models.EntityReference {
	if ref := metadataSkill(event.Metadata); ref != nil {
		return ref
	}

	// The event's own target may be the skill
	if strings.EqualFold(event.EntityType, "skills") {
		return &models.EntityReference{Kind: models.KindSkill, ID: event.EntityID}
	}

	if text.SkillName != "" {
		return &models.EntityReference{Kind: models.KindSkill, Name: text.SkillName}
	}

	return nil
}

// extractOrganization walks the source priority chain for an organization
// reference
func (c *Classifier) extractOrganization(event *models.ChangeEvent, text textExtraction) *models.EntityReference {
	if ref := metadataOrganization(event.Metadata); ref != nil {
		return ref
	}

	if strings.EqualFold(event.EntityType, "organizations") || strings.EqualFold(event.EntityType, "customers") {
		return &models.EntityReference{Kind: models.KindOrganization, ID: event.EntityID}
	}

	if text.OrgName != "" {
		return &models.EntityReference{Kind: models.KindOrganization, Name: text.OrgName}
	}

	return nil
}
