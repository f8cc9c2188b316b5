package service

import (
	"context"

	"github.com/crucial707/inventory/internal/diff"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ========================
// ASSETS
// ========================

// CreateAsset validates and stores a new asset and records its creation.
func (s *Inventory) CreateAsset(ctx context.Context, a models.Asset, actor string) (_ models.Asset, err error) {
	a.Normalize()
	ctx, span := startSpan(ctx, "Inventory.CreateAsset", attribute.String("asset.id", a.ID))
	defer func() { endSpan(span, err) }()

	if err := models.Validate(a); err != nil {
		return models.Asset{}, err
	}
	if err := s.checkCollaboratorRef(ctx, a.CollaboratorRef); err != nil {
		return models.Asset{}, err
	}
	created, err := s.assets.Create(ctx, a)
	if err != nil {
		return models.Asset{}, err
	}
	if _, err := s.recorder.Record(ctx, created.ID, models.HistoryCreation, creationDescription(created.ID), nil, actor); err != nil {
		return models.Asset{}, err
	}
	s.logger.Info("asset created", zap.String("asset_id", created.ID), zap.String("actor", actor))
	return created, nil
}

// GetAsset looks an asset up by id, case-insensitively.
func (s *Inventory) GetAsset(ctx context.Context, id string) (_ models.Asset, err error) {
	ctx, span := startSpan(ctx, "Inventory.GetAsset", attribute.String("asset.id", id))
	defer func() { endSpan(span, err) }()
	return s.assets.Get(ctx, models.NormalizeAssetID(id))
}

// ListAssets returns the assets matching p, sorted by id.
func (s *Inventory) ListAssets(ctx context.Context, p query.AssetParams) (_ AssetList, err error) {
	ctx, span := startSpan(ctx, "Inventory.ListAssets")
	defer func() { endSpan(span, err) }()

	items, total, err := s.assets.List(ctx, p.Build())
	if err != nil {
		return AssetList{}, err
	}
	span.SetAttributes(attribute.Int("result.total", total))
	return AssetList{Assets: items, Total: total}, nil
}

// UpdateAsset applies patch to the asset and records an Edit entry when a
// tracked field changed. Fields absent from the patch are left untouched.
func (s *Inventory) UpdateAsset(ctx context.Context, id string, patch models.AssetPatch, actor string) (models.Asset, error) {
	desc := func(changes []models.Change) string { return editDescription(diff.Fields(changes)) }
	return s.applyPatch(ctx, "Inventory.UpdateAsset", id, patch, models.HistoryEdit, desc, actor)
}

// applyPatch is the read, diff, persist, record sequence shared by updates
// and workflows. The entry is written only when the diff is non-empty.
func (s *Inventory) applyPatch(ctx context.Context, op, id string, patch models.AssetPatch, kind models.HistoryKind, describe func([]models.Change) string, actor string) (_ models.Asset, err error) {
	id = models.NormalizeAssetID(id)
	ctx, span := startSpan(ctx, op, attribute.String("asset.id", id))
	defer func() { endSpan(span, err) }()

	prior, err := s.assets.Get(ctx, id)
	if err != nil {
		return models.Asset{}, err
	}
	patch = patch.Normalized()
	if patch.IsEmpty() {
		return prior, nil
	}
	next := patch.Apply(prior)
	if err := models.Validate(next); err != nil {
		return models.Asset{}, err
	}
	if err := s.checkCollaboratorRef(ctx, patch.CollaboratorRef); err != nil {
		return models.Asset{}, err
	}

	changes := diff.Compute(prior, next)
	updated, err := s.assets.Update(ctx, id, patch)
	if err != nil {
		return models.Asset{}, err
	}
	span.SetAttributes(attribute.Int("asset.changes", len(changes)))
	if len(changes) == 0 {
		return updated, nil
	}
	if _, err := s.recorder.Record(ctx, id, kind, describe(changes), changes, actor); err != nil {
		return models.Asset{}, err
	}
	s.logger.Info("asset changed",
		zap.String("asset_id", id),
		zap.String("kind", string(kind)),
		zap.Strings("fields", diff.Fields(changes)),
		zap.String("actor", actor))
	return updated, nil
}

// DeleteAsset removes an asset and records its deletion. A missing asset
// returns NotFound and records nothing.
func (s *Inventory) DeleteAsset(ctx context.Context, id, actor string) (_ models.Asset, err error) {
	id = models.NormalizeAssetID(id)
	ctx, span := startSpan(ctx, "Inventory.DeleteAsset", attribute.String("asset.id", id))
	defer func() { endSpan(span, err) }()

	deleted, err := s.assets.Delete(ctx, id)
	if err != nil {
		return models.Asset{}, err
	}
	if _, err := s.recorder.Record(ctx, deleted.ID, models.HistoryDeletion, deletionDescription(deleted.ID), nil, actor); err != nil {
		return models.Asset{}, err
	}
	s.logger.Info("asset deleted", zap.String("asset_id", deleted.ID), zap.String("actor", actor))
	return deleted, nil
}

// HistoryFor returns the asset's history, newest first, at most models.HistoryLimit entries.
// Entries of deleted assets are still returned.
func (s *Inventory) HistoryFor(ctx context.Context, id string) (_ []models.HistoryEntry, err error) {
	ctx, span := startSpan(ctx, "Inventory.HistoryFor", attribute.String("asset.id", id))
	defer func() { endSpan(span, err) }()
	return s.recorder.HistoryFor(ctx, id)
}

// Stats returns live counts by status, equipment type, area and location.
// Each dimension sums to Total.
func (s *Inventory) Stats(ctx context.Context) (_ models.AssetStats, err error) {
	ctx, span := startSpan(ctx, "Inventory.Stats")
	defer func() { endSpan(span, err) }()

	return s.assets.Summarize(ctx)
}
