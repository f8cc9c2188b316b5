package handlers

import (
	"net/http"

	"github.com/crucial707/inventory/internal/middleware"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
	"github.com/crucial707/inventory/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CollaboratorHandler struct {
	Svc    *service.Inventory
	Logger *zap.Logger
}

func (h *CollaboratorHandler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthenticated)
		r.Get("/", h.ListCollaborators)
		r.Get("/{id}", h.GetCollaborator)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Post("/", h.CreateCollaborator)
		r.Put("/{id}", h.UpdateCollaborator)
		r.Delete("/{id}", h.DeleteCollaborator)
	})
}

// ==========================
// List Collaborators
// ==========================
func (h *CollaboratorHandler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ListCollaborators(r.Context(), query.CollaboratorParamsFromValues(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ==========================
// Get Collaborator (internal id or employee id) with held equipment
// ==========================
func (h *CollaboratorHandler) GetCollaborator(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Svc.GetCollaborator(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ==========================
// Create Collaborator
// ==========================
type collaboratorInput struct {
	EmployeeID string                    `json:"employeeId"`
	FullName   string                    `json:"fullName"`
	Email      string                    `json:"email"`
	Phone      string                    `json:"phone"`
	Area       models.OrgArea            `json:"area"`
	WorkMode   models.WorkMode           `json:"workMode"`
	Status     models.CollaboratorStatus `json:"status"`
	Notes      string                    `json:"notes"`
}

func (h *CollaboratorHandler) CreateCollaborator(w http.ResponseWriter, r *http.Request) {
	var in collaboratorInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.Svc.CreateCollaborator(r.Context(), models.Collaborator{
		EmployeeID: in.EmployeeID,
		FullName:   in.FullName,
		Email:      in.Email,
		Phone:      in.Phone,
		Area:       in.Area,
		WorkMode:   in.WorkMode,
		Status:     in.Status,
		Notes:      in.Notes,
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	h.Logger.Info("collaborator created via api",
		zap.String("collaborator_id", c.ID),
		zap.String("actor", middleware.ActorFrom(r.Context())))
	writeJSON(w, http.StatusCreated, c)
}

// ==========================
// Update Collaborator
// ==========================
func (h *CollaboratorHandler) UpdateCollaborator(w http.ResponseWriter, r *http.Request) {
	var patch models.CollaboratorPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	c, err := h.Svc.UpdateCollaborator(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ==========================
// Delete Collaborator
// ==========================
func (h *CollaboratorHandler) DeleteCollaborator(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.DeleteCollaborator(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "collaborator " + c.EmployeeID + " deleted"})
}
