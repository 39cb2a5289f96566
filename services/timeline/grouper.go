package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/services/classify"
	"github.com/upb/skillboard/backend/services/noise"
	"go.uber.org/zap"
)

// eventGroup is one logical operation in progress: a representative row plus
// the ids of every raw row folded into it. representative is set only for
// correlated multi-row groups; nil means the group picks its own template.
type eventGroup struct {
	events         []*models.ChangeEvent // ascending by id
	representative *models.ChangeEvent
}

func (g *eventGroup) ids() []int64 {
	ids := make([]int64, 0, len(g.events))
	for _, e := range g.events {
		ids = append(ids, e.ID)
	}
	return ids
}

func (g *eventGroup) latest() *models.ChangeEvent {
	return g.events[len(g.events)-1]
}

func (g *eventGroup) latestTimestamp() time.Time {
	var latest time.Time
	for _, e := range g.events {
		if e.Timestamp.After(latest) {
			latest = e.Timestamp
		}
	}
	return latest
}

// Grouper folds raw change events into consolidated activity items: first a
// coarse cross-table correlation window that collapses "entity created" +
// "entity assigned" bursts, then a fine same-operation merge per
// (entityType, entityId, second).
type Grouper struct {
	classifier        *classify.Classifier
	filter            *noise.Filter
	correlationWindow time.Duration
	logger            *zap.Logger
}

// NewGrouper creates a new grouper
func NewGrouper(classifier *classify.Classifier, filter *noise.Filter, correlationWindow time.Duration, logger *zap.Logger) *Grouper {
	return &Grouper{
		classifier:        classifier,
		filter:            filter,
		correlationWindow: correlationWindow,
		logger:            logger,
	}
}

// Group consolidates a pre-filtered window. Output is sorted newest first;
// ties break on the highest folded raw id.
func (g *Grouper) Group(events []*models.ChangeEvent) []*models.ConsolidatedEvent {
	sorted := make([]*models.ChangeEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	groups := g.correlate(sorted)
	groups = g.mergeSameOperation(groups)

	consolidated := make([]*models.ConsolidatedEvent, 0, len(groups))
	for _, group := range groups {
		if event := g.consolidate(group); event != nil {
			consolidated = append(consolidated, event)
		}
	}

	sort.Slice(consolidated, func(i, j int) bool {
		if !consolidated[i].Timestamp.Equal(consolidated[j].Timestamp) {
			return consolidated[i].Timestamp.After(consolidated[j].Timestamp)
		}
		return consolidated[i].MaxSourceID() > consolidated[j].MaxSourceID()
	})

	return dedupePerActor(consolidated)
}

// correlate collapses creations and assignments of the same entity landing
// within one correlation window. Participants are INSERT rows only; the
// derived key is mentioned entity name + bucketed timestamp.
func (g *Grouper) correlate(events []*models.ChangeEvent) []*eventGroup {
	groupIndex := make(map[string]int)
	var groups []*eventGroup
	assign := func(event *models.ChangeEvent, keys []string) {
		idx := -1
		for _, key := range keys {
			if existing, ok := groupIndex[key]; ok {
				idx = existing
				break
			}
		}
		if idx == -1 {
			groups = append(groups, &eventGroup{})
			idx = len(groups) - 1
		}
		groups[idx].events = append(groups[idx].events, event)
		for _, key := range keys {
			groupIndex[key] = idx
		}
	}

	for _, event := range events {
		if event.EventType != models.EventInsert {
			assign(event, nil)
			continue
		}
		keys := g.correlationKeys(event)
		assign(event, keys)
	}

	// A correlated group keeps its most descriptive row: one whose
	// description narrates the relationship. With no such row the earliest
	// is the representative; either way every raw id stays folded.
	for _, group := range groups {
		if len(group.events) < 2 {
			continue
		}
		group.representative = g.mostDescriptive(group.events)
	}

	return groups
}

// correlationKeys derives the name+bucket keys an INSERT row participates
// under. Rows that mention no entity name correlate with nothing.
func (g *Grouper) correlationKeys(event *models.ChangeEvent) []string {
	names := make(map[string]bool)

	if name := metadataName(event.Metadata); name != "" {
		names[strings.ToLower(name)] = true
	}

	classification := g.classifier.Classify(event)
	for _, target := range []*models.EntityReference{classification.PrimaryTarget, classification.SecondaryTarget} {
		if target != nil && target.Name != "" {
			names[strings.ToLower(target.Name)] = true
		}
	}

	if len(names) == 0 {
		return nil
	}

	bucket := event.Timestamp.UnixNano() / int64(g.correlationWindow)
	keys := make([]string, 0, len(names))
	for name := range names {
		keys = append(keys, fmt.Sprintf("%s@%d", name, bucket))
	}
	sort.Strings(keys)
	return keys
}

// mostDescriptive prefers the row whose description narrates a relationship;
// falls back to the earliest row
func (g *Grouper) mostDescriptive(events []*models.ChangeEvent) *models.ChangeEvent {
	for _, event := range events {
		if event.Description == "" {
			continue
		}
		kind := g.classifier.Classify(event).Kind
		switch kind {
		case models.KindRelationshipAssignment, models.KindSkillApplication, models.KindRequiredSkillSet:
			return event
		}
	}
	return events[0]
}

// mergeSameOperation buckets remaining groups by (entityType, entityId,
// second) and folds each bucket into one group
func (g *Grouper) mergeSameOperation(groups []*eventGroup) []*eventGroup {
	bucketIndex := make(map[string]int)
	var merged []*eventGroup

	for _, group := range groups {
		keyRow := group.representative
		if keyRow == nil {
			keyRow = group.latest()
		}
		key := fmt.Sprintf("%s:%s:%d",
			strings.ToLower(keyRow.EntityType),
			keyRow.EntityID,
			keyRow.Timestamp.Truncate(time.Second).Unix())

		if idx, ok := bucketIndex[key]; ok {
			merged[idx].events = append(merged[idx].events, group.events...)
			if merged[idx].representative == nil {
				merged[idx].representative = group.representative
			}
			continue
		}
		bucketIndex[key] = len(merged)
		merged = append(merged, &eventGroup{events: group.events, representative: group.representative})
	}

	// The id sort feeds ids() and mergeChanges; the representative pointer
	// keeps template selection independent of slice order
	for _, group := range merged {
		sort.Slice(group.events, func(i, j int) bool { return group.events[i].ID < group.events[j].ID })
	}

	return merged
}

// consolidate turns one folded group into a consolidated event, or nil when
// an update burst nets out to nothing visible
func (g *Grouper) consolidate(group *eventGroup) *models.ConsolidatedEvent {
	template := g.pickTemplate(group)
	changes := g.mergeChanges(group, template)

	if template.EventType == models.EventUpdate && len(changes) == 0 {
		// The burst netted out to housekeeping only
		return nil
	}

	classification := g.classifier.Classify(template)

	return &models.ConsolidatedEvent{
		SourceEventIDs:  group.ids(),
		Kind:            classification.Kind,
		EventType:       template.EventType,
		EntityType:      template.EntityType,
		EntityID:        template.EntityID,
		Actor:           models.EntityReference{Kind: models.KindUser, ID: template.UserID},
		PrimaryTarget:   classification.PrimaryTarget,
		SecondaryTarget: classification.SecondaryTarget,
		Changes:         changes,
		Proficiency:     classification.Proficiency,
		Notes:           classification.Notes,
		Timestamp:       group.latestTimestamp(),
	}
}

// pickTemplate selects the row supplying actor/timestamp/entity fields. A
// correlated group's representative wins outright. Otherwise an all-UPDATE
// bucket templates on its most recent row, and a bucket holding a non-UPDATE
// row lets the most recent such row win, intermediate states folded away.
func (g *Grouper) pickTemplate(group *eventGroup) *models.ChangeEvent {
	if group.representative != nil {
		return group.representative
	}
	var lastNonUpdate *models.ChangeEvent
	for _, event := range group.events {
		if event.EventType != models.EventUpdate {
			lastNonUpdate = event
		}
	}
	if lastNonUpdate != nil {
		return lastNonUpdate
	}
	return group.latest()
}

// mergeChanges flattens an update burst into its net field-level effect:
// the earliest oldValue and the latest newValue per field, housekeeping and
// no-op fields excluded
func (g *Grouper) mergeChanges(group *eventGroup, template *models.ChangeEvent) []models.FieldChange {
	if template.EventType != models.EventUpdate {
		return g.filter.VisibleChanges(template.Changes)
	}

	type netChange struct {
		first models.FieldChange
		last  models.FieldChange
	}
	order := make([]string, 0)
	net := make(map[string]*netChange)

	for _, event := range group.events {
		if event.EventType != models.EventUpdate {
			continue
		}
		for _, change := range event.Changes {
			if g.filter.IsHousekeepingField(change.Field) {
				continue
			}
			key := strings.ToLower(change.Field)
			if existing, ok := net[key]; ok {
				existing.last = change
			} else {
				net[key] = &netChange{first: change, last: change}
				order = append(order, key)
			}
		}
	}

	merged := make([]models.FieldChange, 0, len(order))
	for _, key := range order {
		entry := net[key]
		change := models.FieldChange{
			Field:    entry.first.Field,
			OldValue: entry.first.OldValue,
			NewValue: entry.last.NewValue,
		}
		if valuesEqual(change.OldValue, change.NewValue) {
			continue
		}
		merged = append(merged, change)
	}
	return merged
}

// valuesEqual compares loosely-typed diff values by their JSON-ish rendering
func valuesEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// metadataName pulls a plain "name" value out of loosely-typed metadata
func metadataName(metadata map[string]interface{}) string {
	if metadata == nil {
		return ""
	}
	if value, ok := metadata["name"]; ok {
		if s, ok := value.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
