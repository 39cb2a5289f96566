package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/skillboard/backend/middleware"
	"github.com/upb/skillboard/backend/models"
	"github.com/upb/skillboard/backend/services/directory"
	"github.com/upb/skillboard/backend/utils"
	"go.uber.org/zap"
)

// CreateSkillRequest represents a request to create a skill
type CreateSkillRequest struct {
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateSkillRequest represents a request to update a skill
type UpdateSkillRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SkillHandler handles skill-related HTTP requests
type SkillHandler struct {
	directory *directory.Service
	logger    *zap.Logger
}

// NewSkillHandler creates a new SkillHandler
func NewSkillHandler(directory *directory.Service, logger *zap.Logger) *SkillHandler {
	return &SkillHandler{
		directory: directory,
		logger:    logger,
	}
}

// HandleList handles GET /api/v1/skills
func (h *SkillHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	skills, err := h.directory.ListSkills(ctx)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, skills)
}

// HandleCreate handles POST /api/v1/skills
func (h *SkillHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req CreateSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	skill := models.NewSkill(req.Name, req.Category)
	skill.Description = req.Description

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.CreateSkill(ctx, skill, actorID); err != nil {
		h.logger.Error("failed to create skill",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("skill created",
		zap.String("request_id", requestID),
		zap.String("skill_id", skill.ID.String()))

	_ = utils.WriteCreated(w, skill)
}

// HandleGet handles GET /api/v1/skills/{id}
func (h *SkillHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid skill ID format", nil)
		return
	}

	skill, err := h.directory.GetSkill(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, skill)
}

// HandleUpdate handles PATCH /api/v1/skills/{id}
func (h *SkillHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid skill ID format", nil)
		return
	}

	var req UpdateSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	skill, err := h.directory.GetSkill(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if req.Name != nil {
		skill.Name = *req.Name
	}
	if req.Category != nil {
		skill.Category = *req.Category
	}
	if req.Description != nil {
		skill.Description = *req.Description
	}

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.UpdateSkill(ctx, skill, actorID); err != nil {
		h.logger.Error("failed to update skill",
			zap.String("request_id", requestID),
			zap.String("skill_id", id.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, skill)
}

// HandleDelete handles DELETE /api/v1/skills/{id}
func (h *SkillHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid skill ID format", nil)
		return
	}

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.DeleteSkill(ctx, id, actorID); err != nil {
		h.logger.Error("failed to delete skill",
			zap.String("request_id", requestID),
			zap.String("skill_id", id.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
