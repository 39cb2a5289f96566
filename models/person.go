package models

import (
	"time"

	"github.com/google/uuid"
)

// Person represents a tracked individual in the directory
type Person struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Title     string    `json:"title,omitempty" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Person model
func (Person) TableName() string {
	return "people"
}

// NewPerson creates a new Person instance
func NewPerson(name, email string) *Person {
	now := time.Now()
	return &Person{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
