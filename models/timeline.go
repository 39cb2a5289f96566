package models

import "time"

// EntityKind identifies one of the three first-class business entities, plus
// the acting user
type EntityKind string

const (
	KindUser         EntityKind = "user"
	KindOrganization EntityKind = "organization"
	KindSkill        EntityKind = "skill"
)

// EntityReference is a resolved (or best-effort) pointer to a business
// entity. ID may be empty when only a name could be recovered from free
// text; Name always carries a non-empty fallback.
type EntityReference struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id,omitempty"`
	Name string     `json:"name"`
}

// IsZero reports whether the reference is absent
func (r EntityReference) IsZero() bool {
	return r.Kind == "" && r.ID == "" && r.Name == ""
}

// EventKind classifies a consolidated activity item
type EventKind string

const (
	KindGenericInsert          EventKind = "generic-insert"
	KindGenericUpdate          EventKind = "generic-update"
	KindGenericDelete          EventKind = "generic-delete"
	KindRelationshipAssignment EventKind = "relationship-assignment"
	KindSkillApplication       EventKind = "skill-application"
	KindSkillRemoval           EventKind = "skill-removal"
	KindRequiredSkillSet       EventKind = "required-skill-set"
)

// ConsolidatedEvent is one deduplicated, merged, semantically classified
// activity item derived from one or more change-log rows. Consolidated
// events are ephemeral: recomputed in full on every pipeline run, never
// persisted.
type ConsolidatedEvent struct {
	SourceEventIDs  []int64          `json:"source_event_ids"`
	Kind            EventKind        `json:"kind"`
	EventType       EventType        `json:"event_type"`
	EntityType      string           `json:"entity_type"`
	EntityID        string           `json:"entity_id"`
	Actor           EntityReference  `json:"actor"`
	PrimaryTarget   *EntityReference `json:"primary_target,omitempty"`
	SecondaryTarget *EntityReference `json:"secondary_target,omitempty"`
	Changes         []FieldChange    `json:"changes,omitempty"`
	Proficiency     string           `json:"proficiency,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}

// MaxSourceID returns the highest folded raw id, used as the ordering
// tie-breaker
func (c *ConsolidatedEvent) MaxSourceID() int64 {
	var max int64
	for _, id := range c.SourceEventIDs {
		if id > max {
			max = id
		}
	}
	return max
}

// ContainsSource reports whether a raw id was folded into this item
func (c *ConsolidatedEvent) ContainsSource(id int64) bool {
	for _, sid := range c.SourceEventIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// DisplayChange is one rendering-ready change line
type DisplayChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// DisplayEvent is the engine's output unit handed to the rendering
// collaborator. Every field is self-contained; the renderer performs no
// further resolution.
type DisplayEvent struct {
	SourceEventIDs []int64         `json:"source_event_ids"`
	Kind           EventKind       `json:"kind"`
	Actor          EntityReference `json:"actor"`
	ActorLink      string          `json:"actor_link,omitempty"`
	Verb           string          `json:"verb"`
	Primary        string          `json:"primary,omitempty"`
	PrimaryLink    string          `json:"primary_link,omitempty"`
	Secondary      string          `json:"secondary,omitempty"`
	SecondaryLink  string          `json:"secondary_link,omitempty"`
	Changes        []DisplayChange `json:"changes,omitempty"`
	Proficiency    string          `json:"proficiency,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	TimeAbsolute   string          `json:"time_absolute"`
	TimeRelative   string          `json:"time_relative"`
}
