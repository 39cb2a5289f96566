package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/skillboard/backend/config"
	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/repositories"
	"github.com/upb/skillboard/backend/services"
	"github.com/upb/skillboard/backend/services/classify"
	"github.com/upb/skillboard/backend/services/format"
	"github.com/upb/skillboard/backend/services/noise"
	"github.com/upb/skillboard/backend/services/resolver"
	"github.com/upb/skillboard/backend/services/timeline"
	"github.com/upb/skillboard/backend/utils"
	"go.uber.org/zap"
)

// fakeChangeLog backs the timeline service with an in-memory window
type fakeChangeLog struct {
	events []*models.ChangeEvent
	err    error
}

func (f *fakeChangeLog) Insert(ctx context.Context, event *models.ChangeEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeChangeLog) GetByID(ctx context.Context, id int64) (*models.ChangeEvent, error) {
	return nil, services.ErrChangeEventNotFound
}

func (f *fakeChangeLog) GetByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*models.ChangeEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var scoped []*models.ChangeEvent
	for _, event := range f.events {
		if event.EntityType == entityType && event.EntityID == entityID {
			scoped = append(scoped, event)
		}
	}
	return scoped, nil
}

func (f *fakeChangeLog) GetRecent(ctx context.Context, limit int) ([]*models.ChangeEvent, error) {
	return f.events, f.err
}

func (f *fakeChangeLog) WithTx(tx repositories.Transaction) repositories.ChangeLogRepository {
	return f
}

// fakePeople, fakeOrgs, fakeSkills back the resolver with fixed reference
// data
type fakePeople struct{ people []*models.Person }

func (f *fakePeople) Create(ctx context.Context, person *models.Person) error { return nil }
func (f *fakePeople) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	for _, p := range f.people {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, services.ErrPersonNotFound
}
func (f *fakePeople) List(ctx context.Context) ([]*models.Person, error) { return f.people, nil }
func (f *fakePeople) Update(ctx context.Context, person *models.Person) error {
	return nil
}
func (f *fakePeople) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakePeople) WithTx(tx repositories.Transaction) repositories.PersonRepository {
	return f
}

type fakeOrgs struct{ orgs []*models.Organization }

func (f *fakeOrgs) Create(ctx context.Context, org *models.Organization) error { return nil }
func (f *fakeOrgs) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	for _, o := range f.orgs {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, services.ErrOrganizationNotFound
}
func (f *fakeOrgs) List(ctx context.Context) ([]*models.Organization, error) { return f.orgs, nil }
func (f *fakeOrgs) Update(ctx context.Context, org *models.Organization) error {
	return nil
}
func (f *fakeOrgs) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeOrgs) WithTx(tx repositories.Transaction) repositories.OrganizationRepository {
	return f
}

type fakeSkills struct{ skills []*models.Skill }

func (f *fakeSkills) Create(ctx context.Context, skill *models.Skill) error { return nil }
func (f *fakeSkills) GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	for _, s := range f.skills {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, services.ErrSkillNotFound
}
func (f *fakeSkills) List(ctx context.Context) ([]*models.Skill, error) { return f.skills, nil }
func (f *fakeSkills) Update(ctx context.Context, skill *models.Skill) error {
	return nil
}
func (f *fakeSkills) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeSkills) WithTx(tx repositories.Transaction) repositories.SkillRepository {
	return f
}

var feedTime = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTimelineForTest(t *testing.T, changeLog *fakeChangeLog) *timeline.Service {
	t.Helper()
	logger := zap.NewNop()
	cfg := config.TimelineConfig{
		WindowLimit:        500,
		CorrelationWindow:  5 * time.Second,
		HousekeepingFields: []string{"updated_at", "created_at"},
		CoreEntityTypes:    []string{"people", "organizations", "skills"},
		DisplayValueBudget: 120,
	}

	cache := resolver.NewReferenceCache(100, time.Minute)
	resolverSvc := resolver.NewService(&fakePeople{}, &fakeOrgs{}, &fakeSkills{}, cache, logger)
	filter := noise.NewFilter(noise.Config{
		HousekeepingFields: cfg.HousekeepingFields,
		CoreEntityTypes:    cfg.CoreEntityTypes,
	}, logger)
	grouper := timeline.NewGrouper(classify.NewClassifier(logger), filter, cfg.CorrelationWindow, logger)
	formatter := format.NewFormatter(resolverSvc, cfg.DisplayValueBudget, logger)

	return timeline.NewService(changeLog, resolverSvc, grouper, formatter, cfg, logger)
}

func newActivityRouter(h *ActivityHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/activity", h.HandleFeed)
	r.Get("/api/v1/activity/{entityType}/{id}", h.HandleEntityFeed)
	return r
}

func TestActivityHandler_HandleFeed_ServesSnapshot(t *testing.T) {
	changeLog := &fakeChangeLog{events: []*models.ChangeEvent{
		{
			ID: 1, EventType: models.EventInsert, EntityType: "skills",
			EntityID: "s-1", UserID: "u-1", Timestamp: feedTime,
			Description: "Created skill 'React'",
		},
	}}
	svc := newTimelineForTest(t, changeLog)
	_, err := svc.Recompute(context.Background())
	require.NoError(t, err)

	router := newActivityRouter(NewActivityHandler(svc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.DisplayEvent `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "created skill", resp.Data[0].Verb)
}

func TestActivityHandler_HandleFeed_EmptyBeforeFirstRecompute(t *testing.T) {
	svc := newTimelineForTest(t, &fakeChangeLog{})
	router := newActivityRouter(NewActivityHandler(svc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestActivityHandler_HandleFeed_Refresh(t *testing.T) {
	changeLog := &fakeChangeLog{}
	svc := newTimelineForTest(t, changeLog)
	router := newActivityRouter(NewActivityHandler(svc, zap.NewNop()))

	changeLog.events = []*models.ChangeEvent{
		{
			ID: 1, EventType: models.EventDelete, EntityType: "skills",
			EntityID: "s-1", UserID: "u-1", Timestamp: feedTime,
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity?refresh=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.DisplayEvent `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "deleted skill", resp.Data[0].Verb)
}

func TestActivityHandler_HandleFeed_RefreshFailureIsBadGateway(t *testing.T) {
	changeLog := &fakeChangeLog{err: errors.New("connection refused")}
	svc := newTimelineForTest(t, changeLog)
	router := newActivityRouter(NewActivityHandler(svc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity?refresh=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp utils.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "bad_gateway", resp.Error)
}

func TestActivityHandler_HandleEntityFeed(t *testing.T) {
	changeLog := &fakeChangeLog{events: []*models.ChangeEvent{
		{
			ID: 1, EventType: models.EventUpdate, EntityType: "people",
			EntityID: "p-1", UserID: "u-1", Timestamp: feedTime,
			Changes: []models.FieldChange{
				{Field: "name", OldValue: "A", NewValue: "B"},
			},
		},
		{
			ID: 2, EventType: models.EventUpdate, EntityType: "people",
			EntityID: "p-2", UserID: "u-1", Timestamp: feedTime,
			Changes: []models.FieldChange{
				{Field: "name", OldValue: "C", NewValue: "D"},
			},
		},
	}}
	svc := newTimelineForTest(t, changeLog)
	router := newActivityRouter(NewActivityHandler(svc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity/people/p-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.DisplayEvent `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, []int64{1}, resp.Data[0].SourceEventIDs)
}

func TestActivityHandler_HandleEntityFeed_UnknownEntityType(t *testing.T) {
	svc := newTimelineForTest(t, &fakeChangeLog{})
	router := newActivityRouter(NewActivityHandler(svc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity/widgets/w-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
