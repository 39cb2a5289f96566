package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/skillboard/backend/middleware"
	"github.com/upb/skillboard/backend/services/timeline"
	"github.com/upb/skillboard/backend/utils"
	"go.uber.org/zap"
)

// entityTypes the scoped feed accepts in the URL
var activityEntityTypes = map[string]bool{
	"people":             true,
	"organizations":      true,
	"skills":             true,
	"skill_applications": true,
}

// ActivityHandler serves the reconciled activity feed
type ActivityHandler struct {
	timeline *timeline.Service
	logger   *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(timeline *timeline.Service, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		timeline: timeline,
		logger:   logger,
	}
}

// HandleFeed handles GET /api/v1/activity. The published snapshot is served
// by default; ?refresh=true forces a recompute before responding.
func (h *ActivityHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	if r.URL.Query().Get("refresh") == "true" {
		feed, err := h.timeline.Recompute(ctx)
		if err != nil {
			h.logger.Error("feed recompute failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			HandleServiceError(w, err, h.logger)
			return
		}
		_ = utils.WriteOK(w, feed)
		return
	}

	_ = utils.WriteOK(w, h.timeline.Feed())
}

// HandleEntityFeed handles GET /api/v1/activity/{entityType}/{id}
func (h *ActivityHandler) HandleEntityFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "id")

	if !activityEntityTypes[entityType] {
		_ = utils.WriteBadRequest(w, "Unknown entity type", map[string]interface{}{
			"entity_type": entityType,
		})
		return
	}

	feed, err := h.timeline.RecomputeForEntity(ctx, entityType, entityID)
	if err != nil {
		h.logger.Error("entity feed computation failed",
			zap.String("request_id", requestID),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, feed)
}
