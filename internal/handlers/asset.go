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

type AssetHandler struct {
	Svc    *service.Inventory
	Logger *zap.Logger
}

// Routes mounts the asset endpoints. Reads need a session, writes the admin role.
func (h *AssetHandler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthenticated)
		r.Get("/", h.ListAssets)
		r.Get("/stats", h.Stats)
		r.Get("/{id}/history", h.History)
		r.Get("/{id}", h.GetAsset)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Post("/", h.CreateAsset)
		r.Put("/{id}", h.UpdateAsset)
		r.Delete("/{id}", h.DeleteAsset)
		r.Post("/{id}/deliver", h.Deliver)
		r.Post("/{id}/exchange", h.Exchange)
		r.Post("/{id}/return", h.Return)
	})
}

//
// ==========================
// List Assets
// ==========================
//

func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ListAssets(r.Context(), query.AssetParamsFromValues(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

//
// ==========================
// Stats
// ==========================
//

func (h *AssetHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

//
// ==========================
// History
// ==========================
//

func (h *AssetHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Svc.HistoryFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

//
// ==========================
// Get Asset By ID
// ==========================
//

func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.Svc.GetAsset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

//
// ==========================
// Create Asset
// ==========================
//

// assetInput is the create payload: an asset without system-managed fields.
type assetInput struct {
	ID               string               `json:"id"`
	EquipmentType    models.EquipmentType `json:"equipmentType"`
	Brand            string               `json:"brand"`
	Model            string               `json:"model"`
	SerialNumber     string               `json:"serialNumber"`
	Status           models.AssetStatus   `json:"status"`
	Location         models.Location      `json:"location"`
	AssignedUserName string               `json:"assignedUserName"`
	CollaboratorRef  *string              `json:"collaboratorRef"`
	Area             string               `json:"area"`
	DeliveryDate     *models.Date         `json:"deliveryDate"`
	ProofOfDelivery  string               `json:"proofOfDelivery"`
	ProofOfExchange  string               `json:"proofOfExchange"`
	ProofOfReturn    string               `json:"proofOfReturn"`
	Notes            string               `json:"notes"`
}

func (in assetInput) asset() models.Asset {
	return models.Asset{
		ID:               in.ID,
		EquipmentType:    in.EquipmentType,
		Brand:            in.Brand,
		Model:            in.Model,
		SerialNumber:     in.SerialNumber,
		Status:           in.Status,
		Location:         in.Location,
		AssignedUserName: in.AssignedUserName,
		CollaboratorRef:  in.CollaboratorRef,
		Area:             in.Area,
		DeliveryDate:     in.DeliveryDate,
		ProofOfDelivery:  in.ProofOfDelivery,
		ProofOfExchange:  in.ProofOfExchange,
		ProofOfReturn:    in.ProofOfReturn,
		Notes:            in.Notes,
	}
}

func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var input assetInput
	if !decodeJSON(w, r, &input) {
		return
	}

	asset, err := h.Svc.CreateAsset(r.Context(), input.asset(), middleware.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

//
// ==========================
// Update Asset
// ==========================
//

func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	var patch models.AssetPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	asset, err := h.Svc.UpdateAsset(r.Context(), chi.URLParam(r, "id"), patch, middleware.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

//
// ==========================
// Delete Asset
// ==========================
//

func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.Svc.DeleteAsset(r.Context(), chi.URLParam(r, "id"), middleware.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "asset " + asset.ID + " deleted"})
}

//
// ==========================
// Workflows
// ==========================
//

func (h *AssetHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	var req service.DeliverRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	asset, err := h.Svc.Deliver(r.Context(), chi.URLParam(r, "id"), req, middleware.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	var req service.ExchangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	asset, err := h.Svc.Exchange(r.Context(), chi.URLParam(r, "id"), req, middleware.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req service.ReturnRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	asset, err := h.Svc.Return(r.Context(), chi.URLParam(r, "id"), req, middleware.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}
