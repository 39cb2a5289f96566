package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/services/resolver"
	"go.uber.org/zap"
)

// Formatter turns consolidated events into rendering-ready display events.
// Every reference is resolved to a display name here; the renderer performs
// no further lookups.
type Formatter struct {
	resolver    *resolver.Service
	valueBudget int
	logger      *zap.Logger

	// now is swappable for deterministic relative-time tests
	now func() time.Time
}

// NewFormatter creates a new formatter
func NewFormatter(resolver *resolver.Service, valueBudget int, logger *zap.Logger) *Formatter {
	return &Formatter{
		resolver:    resolver,
		valueBudget: valueBudget,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the time source for deterministic rendering
func (f *Formatter) WithClock(now func() time.Time) *Formatter {
	f.now = now
	return f
}

// Format renders a batch, preserving order
func (f *Formatter) Format(events []*models.ConsolidatedEvent) []models.DisplayEvent {
	display := make([]models.DisplayEvent, 0, len(events))
	for _, event := range events {
		display = append(display, f.FormatOne(event))
	}
	return display
}

// FormatOne renders one consolidated event
func (f *Formatter) FormatOne(event *models.ConsolidatedEvent) models.DisplayEvent {
	actor := f.resolver.Resolve(models.KindUser, event.Actor.ID)
	primary := f.resolveTarget(event.PrimaryTarget)
	secondary := f.resolveTarget(event.SecondaryTarget)

	now := f.now()
	display := models.DisplayEvent{
		SourceEventIDs: event.SourceEventIDs,
		Kind:           event.Kind,
		Actor:          actor,
		ActorLink:      entityLink(actor),
		Verb:           f.verb(event, primary),
		Changes:        f.displayChanges(event.Changes),
		Proficiency:    event.Proficiency,
		Notes:          event.Notes,
		Timestamp:      event.Timestamp,
		TimeAbsolute:   event.Timestamp.UTC().Format(time.RFC3339),
		TimeRelative:   RelativeTime(event.Timestamp, now),
	}

	if !primary.IsZero() {
		display.Primary = primary.Name
		display.PrimaryLink = entityLink(primary)
	}
	if !secondary.IsZero() {
		display.Secondary = secondary.Name
		display.SecondaryLink = entityLink(secondary)
	}

	return display
}

// resolveTarget upgrades a classification reference to a resolved one.
// An id resolves through the ladder; a bare recovered name resolves by name.
// A raw name beats the synthetic fallback when the id is unmatched.
func (f *Formatter) resolveTarget(ref *models.EntityReference) models.EntityReference {
	if ref == nil {
		return models.EntityReference{}
	}
	if ref.ID != "" {
		resolved := f.resolver.Resolve(ref.Kind, ref.ID)
		if resolved.ID == "" && ref.Name != "" {
			return models.EntityReference{Kind: ref.Kind, Name: ref.Name}
		}
		return resolved
	}
	if ref.Name != "" {
		return f.resolver.ResolveByName(ref.Kind, ref.Name)
	}
	return models.EntityReference{}
}

// verb builds the narrative phrase for the event kind
func (f *Formatter) verb(event *models.ConsolidatedEvent, primary models.EntityReference) string {
	switch event.Kind {
	case models.KindSkillApplication:
		if event.Proficiency != "" {
			return fmt.Sprintf("applied %s proficiency in", event.Proficiency)
		}
		return "applied"
	case models.KindSkillRemoval:
		return "removed"
	case models.KindRelationshipAssignment:
		return "assigned"
	case models.KindRequiredSkillSet:
		return "updated required skills for"
	case models.KindGenericInsert:
		return "created " + entityNoun(event.EntityType, primary)
	case models.KindGenericDelete:
		return "deleted " + entityNoun(event.EntityType, primary)
	default:
		return "updated " + entityNoun(event.EntityType, primary)
	}
}

// entityNoun picks a readable noun for a generic event: the table name
// singularized, lower-cased
func entityNoun(entityType string, primary models.EntityReference) string {
	noun := strings.ToLower(strings.TrimSpace(entityType))
	noun = strings.ReplaceAll(noun, "_", " ")
	switch noun {
	case "people", "person":
		return "person"
	case "":
		return "record"
	}
	if strings.HasSuffix(noun, "ies") {
		return noun[:len(noun)-3] + "y"
	}
	if strings.HasSuffix(noun, "s") {
		return noun[:len(noun)-1]
	}
	return noun
}

// displayChanges renders the visible field diffs, dropping bare identifier
// columns whose values mean nothing to readers
func (f *Formatter) displayChanges(changes []models.FieldChange) []models.DisplayChange {
	display := make([]models.DisplayChange, 0, len(changes))
	for _, change := range changes {
		if IsIdentifierField(change.Field) {
			continue
		}
		display = append(display, models.DisplayChange{
			Field:    HumanizeField(change.Field),
			OldValue: HumanizeValue(change.OldValue, f.valueBudget),
			NewValue: HumanizeValue(change.NewValue, f.valueBudget),
		})
	}
	return display
}

// entityLink builds the dashboard route for a resolved reference; synthetic
// fallbacks and name-only references have no destination
func entityLink(ref models.EntityReference) string {
	if ref.ID == "" {
		return ""
	}
	switch ref.Kind {
	case models.KindUser:
		return "/people/" + ref.ID
	case models.KindOrganization:
		return "/organizations/" + ref.ID
	case models.KindSkill:
		return "/skills/" + ref.ID
	}
	return ""
}
