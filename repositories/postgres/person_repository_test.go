package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/skillboard/backend/models"
	"go.uber.org/zap"
)

func TestPersonRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPersonRepository(db, zap.NewNop())

	person := models.NewPerson("Jane Smith", "jane@example.com")
	person.Title = "Engineer"

	mock.ExpectExec("INSERT INTO people").
		WithArgs(person.ID, "Jane Smith", "jane@example.com", "Engineer",
			person.CreatedAt, person.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), person)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPersonRepository(db, zap.NewNop())

	id := uuid.New()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "name", "email", "title", "created_at", "updated_at"}

	mock.ExpectQuery("SELECT (.+) FROM people").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id.String(), "Jane Smith", "jane@example.com", "Engineer", now, now))

	person, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, person.ID)
	assert.Equal(t, "Jane Smith", person.Name)
	assert.Equal(t, "Engineer", person.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPersonRepository(db, zap.NewNop())

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM people").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	person, err := repo.GetByID(context.Background(), id)

	require.Error(t, err)
	assert.Nil(t, person)
	assert.Contains(t, err.Error(), "not found")
}

func TestPersonRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPersonRepository(db, zap.NewNop())

	now := time.Now()
	columns := []string{"id", "name", "email", "title", "created_at", "updated_at"}

	mock.ExpectQuery("SELECT (.+) FROM people ORDER BY name").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.NewString(), "Alice", "alice@example.com", "", now, now).
			AddRow(uuid.NewString(), "Bob", "bob@example.com", "Lead", now, now))

	people, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Alice", people[0].Name)
	assert.Equal(t, "Bob", people[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPersonRepository(db, zap.NewNop())

	person := models.NewPerson("Jane", "jane@example.com")

	mock.ExpectExec("UPDATE people").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), person)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPersonRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPersonRepository(db, zap.NewNop())

	id := uuid.New()
	mock.ExpectExec("DELETE FROM people").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), id)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
