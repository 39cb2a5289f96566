package timeline

import (
	"fmt"
	"strings"

	"github.com/upb/skillboard/backend/models"
)

// dedupePerActor suppresses repeated skill and assignment narratives by the
// same actor inside one window. The list arrives newest first, so the most
// recent telling survives.
func dedupePerActor(events []*models.ConsolidatedEvent) []*models.ConsolidatedEvent {
	seen := make(map[string]bool)
	result := make([]*models.ConsolidatedEvent, 0, len(events))
	for _, event := range events {
		key := dedupKey(event)
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		result = append(result, event)
	}
	return result
}

// dedupKey builds the per-actor identity for kinds subject to suppression;
// other kinds return "" and always pass through
func dedupKey(event *models.ConsolidatedEvent) string {
	var prefix string
	var target *models.EntityReference
	switch event.Kind {
	case models.KindSkillApplication:
		prefix = "skill"
		target = event.PrimaryTarget
	case models.KindRelationshipAssignment:
		prefix = "assignment"
		target = event.SecondaryTarget
		if target == nil {
			target = event.PrimaryTarget
		}
	default:
		return ""
	}
	if target == nil {
		return ""
	}
	identity := target.ID
	if identity == "" {
		identity = strings.ToLower(target.Name)
	}
	if identity == "" {
		return ""
	}
	return fmt.Sprintf("%s|%s|%s", event.Actor.ID, prefix, identity)
}
