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

// CreatePersonRequest represents a request to create a person
type CreatePersonRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Title string `json:"title,omitempty"`
}

// UpdatePersonRequest represents a request to update a person
type UpdatePersonRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Title *string `json:"title,omitempty"`
}

// PersonHandler handles person-related HTTP requests
type PersonHandler struct {
	directory *directory.Service
	logger    *zap.Logger
}

// NewPersonHandler creates a new PersonHandler
func NewPersonHandler(directory *directory.Service, logger *zap.Logger) *PersonHandler {
	return &PersonHandler{
		directory: directory,
		logger:    logger,
	}
}

// HandleList handles GET /api/v1/people
func (h *PersonHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	people, err := h.directory.ListPeople(ctx)
	if err != nil {
		h.logger.Error("failed to list people",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, people)
}

// HandleCreate handles POST /api/v1/people
func (h *PersonHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	person := models.NewPerson(req.Name, req.Email)
	person.Title = req.Title

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.CreatePerson(ctx, person, actorID); err != nil {
		h.logger.Error("failed to create person",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("person created",
		zap.String("request_id", requestID),
		zap.String("person_id", person.ID.String()))

	_ = utils.WriteCreated(w, person)
}

// HandleGet handles GET /api/v1/people/{id}
func (h *PersonHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid person ID format", nil)
		return
	}

	person, err := h.directory.GetPerson(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, person)
}

// HandleUpdate handles PATCH /api/v1/people/{id}
func (h *PersonHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid person ID format", nil)
		return
	}

	var req UpdatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	person, err := h.directory.GetPerson(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if req.Name != nil {
		person.Name = *req.Name
	}
	if req.Email != nil {
		person.Email = *req.Email
	}
	if req.Title != nil {
		person.Title = *req.Title
	}

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.UpdatePerson(ctx, person, actorID); err != nil {
		h.logger.Error("failed to update person",
			zap.String("request_id", requestID),
			zap.String("person_id", id.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, person)
}

// HandleDelete handles DELETE /api/v1/people/{id}
func (h *PersonHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid person ID format", nil)
		return
	}

	actorID := middleware.GetActorIDFromContext(ctx)
	if err := h.directory.DeletePerson(ctx, id, actorID); err != nil {
		h.logger.Error("failed to delete person",
			zap.String("request_id", requestID),
			zap.String("person_id", id.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("person deleted",
		zap.String("request_id", requestID),
		zap.String("person_id", id.String()))

	utils.WriteNoContent(w)
}
