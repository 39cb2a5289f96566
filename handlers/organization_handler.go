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

// CreateOrganizationRequest represents a request to create an organization
type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required,lowercase"`
}

// UpdateOrganizationRequest represents a request to update an organization
type UpdateOrganizationRequest struct {
	Name *string `json:"name,omitempty"`
	Slug *string `json:"slug,omitempty"`
}

// OrganizationHandler handles organization-related HTTP requests
type OrganizationHandler struct {
	directory *directory.Service
	logger    *zap.Logger
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(directory *directory.Service, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		directory: directory,
		logger:    logger,
	}
}

// HandleList handles GET /api/v1/organizations
func (h *OrganizationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgs, err := h.directory.ListOrganizations(ctx)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, orgs)
}

// HandleCreate handles POST /api/v1/organizations
func (h *OrganizationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	org := models.NewOrganization(req.Name, req.Slug)

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.CreateOrganization(ctx, org, actorID); err != nil {
		h.logger.Error("failed to create organization",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("organization created",
		zap.String("request_id", requestID),
		zap.String("org_id", org.ID.String()))

	_ = utils.WriteCreated(w, org)
}

// HandleGet handles GET /api/v1/organizations/{id}
func (h *OrganizationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid organization ID format", nil)
		return
	}

	org, err := h.directory.GetOrganization(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, org)
}

// HandleUpdate handles PATCH /api/v1/organizations/{id}
func (h *OrganizationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid organization ID format", nil)
		return
	}

	var req UpdateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	org, err := h.directory.GetOrganization(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Slug != nil {
		org.Slug = *req.Slug
	}

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.UpdateOrganization(ctx, org, actorID); err != nil {
		h.logger.Error("failed to update organization",
			zap.String("request_id", requestID),
			zap.String("org_id", id.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, org)
}

// HandleDelete handles DELETE /api/v1/organizations/{id}
func (h *OrganizationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid organization ID format", nil)
		return
	}

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.DeleteOrganization(ctx, id, actorID); err != nil {
		h.logger.Error("failed to delete organization",
			zap.String("request_id", requestID),
			zap.String("org_id", id.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
