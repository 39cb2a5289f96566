package models

import (
	"encoding/json"
	"time"
)

// EventType represents the kind of row-level operation captured by the
// change-log triggers
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// FieldChange represents a single column-level diff captured for an UPDATE
type FieldChange struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"old_value"`
	NewValue interface{} `json:"new_value"`
}

// ChangeEvent represents one raw change-log row as emitted by the
// trigger-based audit mechanism. Rows are append-only and immutable; the id
// is strictly increasing in insertion order.
type ChangeEvent struct {
	ID          int64                  `json:"id" db:"id"`
	EventType   EventType              `json:"event_type" db:"event_type"`
	EntityType  string                 `json:"entity_type" db:"entity_type"`
	EntityID    string                 `json:"entity_id" db:"entity_id"`
	UserID      string                 `json:"user_id" db:"user_id"`
	Timestamp   time.Time              `json:"timestamp" db:"timestamp"`
	Changes     []FieldChange          `json:"changes,omitempty" db:"changes"`
	Description string                 `json:"description,omitempty" db:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
}

// TableName returns the table name for the ChangeEvent model
func (ChangeEvent) TableName() string {
	return "change_log"
}

// NewChangeEvent creates a new ChangeEvent instance
func NewChangeEvent(eventType EventType, entityType, entityID, userID string) *ChangeEvent {
	return &ChangeEvent{
		EventType:  eventType,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Timestamp:  time.Now(),
	}
}

// WithChanges sets the field-level diff list
func (e *ChangeEvent) WithChanges(changes []FieldChange) *ChangeEvent {
	e.Changes = changes
	return e
}

// WithDescription sets the free-text summary
func (e *ChangeEvent) WithDescription(description string) *ChangeEvent {
	e.Description = description
	return e
}

// WithMetadata sets the loosely-typed metadata map
func (e *ChangeEvent) WithMetadata(metadata map[string]interface{}) *ChangeEvent {
	e.Metadata = metadata
	return e
}

// MarshalChanges serializes the diff list for JSONB storage
func (e *ChangeEvent) MarshalChanges() (json.RawMessage, error) {
	if len(e.Changes) == 0 {
		return nil, nil
	}
	return json.Marshal(e.Changes)
}

// MarshalMetadata serializes the metadata map for JSONB storage
func (e *ChangeEvent) MarshalMetadata() (json.RawMessage, error) {
	if len(e.Metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(e.Metadata)
}

// DecodeChanges deserializes a stored diff list. Malformed payloads decode to
// an empty list rather than failing the row.
func (e *ChangeEvent) DecodeChanges(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var changes []FieldChange
	if err := json.Unmarshal(raw, &changes); err == nil {
		e.Changes = changes
	}
}

// DecodeMetadata deserializes stored metadata. Malformed payloads decode to
// an empty map; classification then falls back to description heuristics.
func (e *ChangeEvent) DecodeMetadata(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(raw, &metadata); err == nil {
		e.Metadata = metadata
	}
}
