package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/skillboard/backend/models"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &DB{DB: db, logger: zap.NewNop()}, mock
}

func TestChangeLogRepository_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChangeLogRepository(db, zap.NewNop())

	event := models.NewChangeEvent(models.EventUpdate, "people", "p-1", "u-1").
		WithChanges([]models.FieldChange{
			{Field: "name", OldValue: "Jane", NewValue: "Janet"},
		}).
		WithDescription("Updated person 'Janet'").
		WithMetadata(map[string]interface{}{"name": "Janet"})

	mock.ExpectQuery("INSERT INTO change_log").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	err := repo.Insert(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, int64(42), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeLogRepository_Insert_EmptyPayloadsStoredAsNull(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChangeLogRepository(db, zap.NewNop())

	event := models.NewChangeEvent(models.EventDelete, "skills", "s-1", "u-1")

	mock.ExpectQuery("INSERT INTO change_log").
		WithArgs(
			string(models.EventDelete), "skills", "s-1", "u-1",
			sqlmock.AnyArg(), nil, nil, nil,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	err := repo.Insert(context.Background(), event)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeLogRepository_GetRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChangeLogRepository(db, zap.NewNop())

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	columns := []string{
		"id", "event_type", "entity_type", "entity_id", "user_id",
		"timestamp", "changes", "description", "metadata",
	}

	mock.ExpectQuery("SELECT (.+) FROM change_log ORDER BY id DESC").
		WithArgs(500).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(2), "UPDATE", "people", "p-1", "u-1", now,
				[]byte(`[{"field":"name","old_value":"A","new_value":"B"}]`),
				"Updated person", []byte(`{"name":"B"}`)).
			AddRow(int64(1), "INSERT", "people", "p-1", "u-1", now.Add(-time.Minute),
				nil, nil, nil))

	events, err := repo.GetRecent(context.Background(), 500)

	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, int64(2), first.ID)
	assert.Equal(t, models.EventUpdate, first.EventType)
	require.Len(t, first.Changes, 1)
	assert.Equal(t, "name", first.Changes[0].Field)
	assert.Equal(t, "B", first.Changes[0].NewValue)
	assert.Equal(t, "Updated person", first.Description)
	assert.Equal(t, map[string]interface{}{"name": "B"}, first.Metadata)

	second := events[1]
	assert.Equal(t, int64(1), second.ID)
	assert.Empty(t, second.Changes)
	assert.Empty(t, second.Description)
	assert.Empty(t, second.Metadata)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeLogRepository_GetRecent_MalformedPayloadsDegrade(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChangeLogRepository(db, zap.NewNop())

	columns := []string{
		"id", "event_type", "entity_type", "entity_id", "user_id",
		"timestamp", "changes", "description", "metadata",
	}

	mock.ExpectQuery("SELECT (.+) FROM change_log ORDER BY id DESC").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), "INSERT", "people", "p-1", "u-1", time.Now(),
				[]byte(`{not json`), "ok", []byte(`[broken`)))

	events, err := repo.GetRecent(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Changes)
	assert.Empty(t, events[0].Metadata)
	assert.Equal(t, "ok", events[0].Description)
}

func TestChangeLogRepository_GetByEntity(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChangeLogRepository(db, zap.NewNop())

	columns := []string{
		"id", "event_type", "entity_type", "entity_id", "user_id",
		"timestamp", "changes", "description", "metadata",
	}

	mock.ExpectQuery("SELECT (.+) FROM change_log").
		WithArgs("people", "p-1", 100).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(3), "DELETE", "people", "p-1", "u-1", time.Now(),
				nil, nil, nil))

	events, err := repo.GetByEntity(context.Background(), "people", "p-1", 100)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventDelete, events[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeLogRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChangeLogRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT (.+) FROM change_log").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	event, err := repo.GetByID(context.Background(), 99)

	require.Error(t, err)
	assert.Nil(t, event)
	assert.Contains(t, err.Error(), "not found")
}
