package service

import (
	"context"
	"strings"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
)

// DeliverRequest hands an asset to a holder.
type DeliverRequest struct {
	AssignedUserName string           `json:"assignedUserName"`
	CollaboratorRef  *string          `json:"collaboratorRef,omitempty"`
	Area             *string          `json:"area,omitempty"`
	Location         *models.Location `json:"location,omitempty"`
	DeliveryDate     *models.Date     `json:"deliveryDate,omitempty"`
	ProofOfDelivery  *string          `json:"proofOfDelivery,omitempty"`
}

// ExchangeRequest moves an assigned asset to another holder.
type ExchangeRequest struct {
	AssignedUserName string  `json:"assignedUserName"`
	CollaboratorRef  *string `json:"collaboratorRef,omitempty"`
	Area             *string `json:"area,omitempty"`
	ProofOfExchange  *string `json:"proofOfExchange,omitempty"`
}

// ReturnRequest takes an asset back from its holder.
type ReturnRequest struct {
	Location      *models.Location `json:"location,omitempty"`
	ProofOfReturn *string          `json:"proofOfReturn,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

func requiredHolder(name string) (string, error) {
	name = models.NormalizeFullName(name)
	if name == "" {
		return "", apperr.Validation("validation failed", map[string]string{"assignedUserName": "required"})
	}
	return name, nil
}

func notAssigned() error {
	return apperr.Validation("validation failed", map[string]string{"assignedUserName": "asset is not assigned"})
}

// Deliver assigns the asset to req.AssignedUserName and records a Delivery.
func (s *Inventory) Deliver(ctx context.Context, id string, req DeliverRequest, actor string) (models.Asset, error) {
	holder, err := requiredHolder(req.AssignedUserName)
	if err != nil {
		return models.Asset{}, err
	}
	ref := req.CollaboratorRef
	if ref == nil {
		prior, err := s.assets.Get(ctx, models.NormalizeAssetID(id))
		if err != nil {
			return models.Asset{}, err
		}
		if prior.AssignedUserName != holder {
			// A new holder never inherits the previous holder's reference.
			ref = models.Ptr("")
		}
	}
	patch := models.AssetPatch{
		Status:           models.Ptr(models.StatusAssigned),
		AssignedUserName: &holder,
		CollaboratorRef:  ref,
		Area:             req.Area,
		Location:         req.Location,
		DeliveryDate:     req.DeliveryDate,
		ProofOfDelivery:  req.ProofOfDelivery,
	}
	describe := func([]models.Change) string { return "Delivered to " + holder }
	return s.applyPatch(ctx, "Inventory.Deliver", id, patch, models.HistoryDelivery, describe, actor)
}

// Exchange moves an assigned asset to a new holder and records an Exchange.
func (s *Inventory) Exchange(ctx context.Context, id string, req ExchangeRequest, actor string) (models.Asset, error) {
	holder, err := requiredHolder(req.AssignedUserName)
	if err != nil {
		return models.Asset{}, err
	}
	prior, err := s.assets.Get(ctx, models.NormalizeAssetID(id))
	if err != nil {
		return models.Asset{}, err
	}
	previous := prior.AssignedUserName
	if previous == "" {
		return models.Asset{}, notAssigned()
	}
	ref := req.CollaboratorRef
	if ref == nil {
		// The old holder's reference never carries over to the new one.
		ref = models.Ptr("")
	}
	patch := models.AssetPatch{
		Status:           models.Ptr(models.StatusAssigned),
		AssignedUserName: &holder,
		CollaboratorRef:  ref,
		Area:             req.Area,
		ProofOfExchange:  req.ProofOfExchange,
	}
	describe := func([]models.Change) string { return "Exchanged from " + previous + " to " + holder }
	return s.applyPatch(ctx, "Inventory.Exchange", id, patch, models.HistoryExchange, describe, actor)
}

// Return clears the holder, moves the asset to the warehouse unless another
// location is given, and records a Return.
func (s *Inventory) Return(ctx context.Context, id string, req ReturnRequest, actor string) (models.Asset, error) {
	prior, err := s.assets.Get(ctx, models.NormalizeAssetID(id))
	if err != nil {
		return models.Asset{}, err
	}
	previous := prior.AssignedUserName
	if strings.TrimSpace(previous) == "" {
		return models.Asset{}, notAssigned()
	}
	location := req.Location
	if location == nil || *location == "" {
		location = models.Ptr(models.LocationWarehouse)
	}
	patch := models.AssetPatch{
		Status:           models.Ptr(models.StatusInWarehouse),
		Location:         location,
		AssignedUserName: models.Ptr(""),
		CollaboratorRef:  models.Ptr(""),
		ProofOfReturn:    req.ProofOfReturn,
		Notes:            req.Notes,
	}
	describe := func([]models.Change) string { return "Returned by " + previous }
	return s.applyPatch(ctx, "Inventory.Return", id, patch, models.HistoryReturn, describe, actor)
}
