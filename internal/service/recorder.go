package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/crucial707/inventory/internal/metrics"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/repo"
	"go.uber.org/zap"
)

// Recorder appends immutable history entries. It has no way to change or
// remove an entry once written.
type Recorder struct {
	store  repo.HistoryStore
	logger *zap.Logger
}

func NewRecorder(store repo.HistoryStore, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger}
}

// Record appends one entry for assetID. An empty actor is recorded as "system".
func (r *Recorder) Record(ctx context.Context, assetID string, kind models.HistoryKind, description string, changes []models.Change, actor string) (models.HistoryEntry, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = models.ActorSystem
	}
	if changes == nil {
		changes = []models.Change{}
	}
	entry, err := r.store.Append(ctx, models.HistoryEntry{
		AssetID:     models.NormalizeAssetID(assetID),
		Kind:        kind,
		Description: description,
		Changes:     changes,
		Actor:       actor,
	})
	if err != nil {
		r.logger.Error("history append failed",
			zap.String("asset_id", assetID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return models.HistoryEntry{}, fmt.Errorf("record %s for %s: %w", kind, assetID, err)
	}
	metrics.IncHistoryEntry(string(kind))
	return entry, nil
}

// HistoryFor returns up to models.HistoryLimit entries for an asset, newest first.
func (r *Recorder) HistoryFor(ctx context.Context, assetID string) ([]models.HistoryEntry, error) {
	return r.store.ListByAsset(ctx, models.NormalizeAssetID(assetID), models.HistoryLimit)
}

func creationDescription(id string) string { return "Asset " + id + " created" }

func deletionDescription(id string) string { return "Asset " + id + " deleted" }

func editDescription(fields []string) string { return "Modified: " + strings.Join(fields, ", ") }
