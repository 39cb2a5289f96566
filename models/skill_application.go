package models

import (
	"time"

	"github.com/google/uuid"
)

// SkillApplication represents one application of a skill by a person at an
// organization, carrying a proficiency level. It is the many-to-many join
// that the timeline narrates as "applied X at Y".
type SkillApplication struct {
	ID             uuid.UUID `json:"id" db:"id"`
	PersonID       uuid.UUID `json:"person_id" db:"person_id"`
	SkillID        uuid.UUID `json:"skill_id" db:"skill_id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Proficiency    string    `json:"proficiency,omitempty" db:"proficiency"`
	Notes          string    `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the SkillApplication model
func (SkillApplication) TableName() string {
	return "skill_applications"
}

// NewSkillApplication creates a new SkillApplication instance
func NewSkillApplication(personID, skillID, orgID uuid.UUID, proficiency string) *SkillApplication {
	now := time.Now()
	return &SkillApplication{
		ID:             uuid.New(),
		PersonID:       personID,
		SkillID:        skillID,
		OrganizationID: orgID,
		Proficiency:    proficiency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
