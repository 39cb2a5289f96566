package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/skillboard/backend/middleware"
	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/services/classify"
	"github.com/upb/skillboard/backend/services/directory"
	"github.com/upb/skillboard/backend/utils"
	"go.uber.org/zap"
)

// ApplySkillRequest represents a request to record a skill application
type ApplySkillRequest struct {
	PersonID       uuid.UUID `json:"person_id" validate:"required"`
	SkillID        uuid.UUID `json:"skill_id" validate:"required"`
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
	Proficiency    string    `json:"proficiency,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

// SkillApplicationHandler handles skill-application HTTP requests
type SkillApplicationHandler struct {
	directory *directory.Service
	logger    *zap.Logger
}

// NewSkillApplicationHandler creates a new SkillApplicationHandler
func NewSkillApplicationHandler(directory *directory.Service, logger *zap.Logger) *SkillApplicationHandler {
	return &SkillApplicationHandler{
		directory: directory,
		logger:    logger,
	}
}

// HandleCreate handles POST /api/v1/skill-applications
func (h *SkillApplicationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req ApplySkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	// Store the canonical proficiency so the feed never has to guess
	proficiency := classify.NormalizeProficiency(req.Proficiency)

	app := models.NewSkillApplication(req.PersonID, req.SkillID, req.OrganizationID, proficiency)
	app.Notes = req.Notes

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.ApplySkill(ctx, app, actorID); err != nil {
		h.logger.Error("failed to apply skill",
			zap.String("request_id", requestID),
			zap.String("person_id", req.PersonID.String()),
			zap.String("skill_id", req.SkillID.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("skill applied",
		zap.String("request_id", requestID),
		zap.String("application_id", app.ID.String()))

	_ = utils.WriteCreated(w, app)
}

// HandleListByPerson handles GET /api/v1/people/{id}/skill-applications
func (h *SkillApplicationHandler) HandleListByPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	personID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid person ID format", nil)
		return
	}

	apps, err := h.directory.ListSkillApplications(ctx, personID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, apps)
}

// HandleDelete handles DELETE /api/v1/skill-applications/{id}
func (h *SkillApplicationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid skill application ID format", nil)
		return
	}

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.RemoveSkillApplication(ctx, id, actorID); err != nil {
		h.logger.Error("failed to remove skill application",
			zap.String("request_id", requestID),
			zap.String("application_id", id.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
