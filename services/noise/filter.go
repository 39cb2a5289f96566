package noise

import (
	"strings"

	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/services/classify"
	"go.uber.org/zap"
)

// Tables whose rows describe the acting person itself. Self-touch updates on
// these are a known artifact of join-table side effects, not user actions.
var actorTables = map[string]bool{
	"people":   true,
	"users":    true,
	"profiles": true,
}

// Config holds the tunable noise rules. The junction-row heuristic pattern-
// matches on id shape, so the entity-type lists are configuration rather
// than hardcoded.
type Config struct {
	// HousekeepingFields are diff fields that carry no user-visible signal
	HousekeepingFields []string
	// CoreEntityTypes are tables whose numeric-id inserts are real entities
	CoreEntityTypes []string
}

// Filter drops change events that carry no user-visible information. It is
// pure and order-preserving; every drop is attributable to exactly one rule.
type Filter struct {
	housekeeping map[string]bool
	coreTypes    map[string]bool
	logger       *zap.Logger
}

// NewFilter creates a new noise filter
func NewFilter(cfg Config, logger *zap.Logger) *Filter {
	housekeeping := make(map[string]bool, len(cfg.HousekeepingFields))
	for _, f := range cfg.HousekeepingFields {
		housekeeping[strings.ToLower(f)] = true
	}
	coreTypes := make(map[string]bool, len(cfg.CoreEntityTypes))
	for _, t := range cfg.CoreEntityTypes {
		coreTypes[strings.ToLower(t)] = true
	}
	return &Filter{
		housekeeping: housekeeping,
		coreTypes:    coreTypes,
		logger:       logger,
	}
}

// Apply filters the window, keeping relative order. An event is dropped when
// any single rule fully applies to it.
func (f *Filter) Apply(events []*models.ChangeEvent) []*models.ChangeEvent {
	latestSelfCreation := f.latestSelfCreations(events)

	kept := make([]*models.ChangeEvent, 0, len(events))
	for _, event := range events {
		if rule := f.dropRule(event, latestSelfCreation); rule != "" {
			f.logger.Debug("change event filtered",
				zap.Int64("id", event.ID),
				zap.String("rule", rule))
			continue
		}
		kept = append(kept, event)
	}
	return kept
}

// IsHousekeepingField reports whether a field name is bookkeeping-only
func (f *Filter) IsHousekeepingField(field string) bool {
	return f.housekeeping[strings.ToLower(field)]
}

// VisibleChanges returns the diff entries outside the housekeeping set
func (f *Filter) VisibleChanges(changes []models.FieldChange) []models.FieldChange {
	var visible []models.FieldChange
	for _, change := range changes {
		if !f.IsHousekeepingField(change.Field) {
			visible = append(visible, change)
		}
	}
	return visible
}

// dropRule returns the name of the rule that removes the event, or "" when
// the event survives all rules
func (f *Filter) dropRule(event *models.ChangeEvent, latestSelfCreation map[string]int64) string {
	entityType := strings.ToLower(event.EntityType)

	// UPDATE with no visible diff
	if event.EventType == models.EventUpdate && len(f.VisibleChanges(event.Changes)) == 0 {
		return "empty-update"
	}

	// Self-touch on the actor's own row without a visible diff
	if event.EventType == models.EventUpdate &&
		actorTables[entityType] &&
		event.EntityID == event.UserID &&
		len(f.VisibleChanges(event.Changes)) == 0 {
		return "self-touch"
	}

	// Junction-row artifact: numeric-only id inserted on a non-core table.
	// A row that narrates its operation is a real relationship event, not
	// an artifact, so it stays regardless of id shape.
	if event.EventType == models.EventInsert &&
		!f.coreTypes[entityType] &&
		isNumericID(event.EntityID) &&
		!f.carriesSignal(event) {
		return "junction-artifact"
	}

	// Duplicate self-creation rows: only the most recent survives
	if event.EventType == models.EventInsert && event.EntityID == event.UserID {
		key := selfCreationKey(event)
		if latest, ok := latestSelfCreation[key]; ok && event.ID != latest {
			return "duplicate-self-creation"
		}
	}

	return ""
}

// carriesSignal reports whether the row holds user-visible information: a
// description, entity references in metadata, or a non-housekeeping diff
func (f *Filter) carriesSignal(event *models.ChangeEvent) bool {
	if strings.TrimSpace(event.Description) != "" {
		return true
	}
	if len(f.VisibleChanges(event.Changes)) > 0 {
		return true
	}
	return classify.HasEntityReference(event.Metadata)
}

// latestSelfCreations indexes the highest raw id per actor/entity
// self-creation pair
func (f *Filter) latestSelfCreations(events []*models.ChangeEvent) map[string]int64 {
	latest := make(map[string]int64)
	for _, event := range events {
		if event.EventType != models.EventInsert || event.EntityID != event.UserID {
			continue
		}
		key := selfCreationKey(event)
		if event.ID > latest[key] {
			latest[key] = event.ID
		}
	}
	return latest
}

func selfCreationKey(event *models.ChangeEvent) string {
	return strings.ToLower(event.EntityType) + ":" + event.EntityID + ":" + event.UserID
}

// isNumericID reports whether an id is digits only, the shape of a
// monotonically-issued join-row key
func isNumericID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
