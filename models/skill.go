package models

import (
	"time"

	"github.com/google/uuid"
)

// Skill represents a named capability that people apply at organizations
type Skill struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category,omitempty" db:"category"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Skill model
func (Skill) TableName() string {
	return "skills"
}

// NewSkill creates a new Skill instance
func NewSkill(name, category string) *Skill {
	now := time.Now()
	return &Skill{
		ID:        uuid.New(),
		Name:      name,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
