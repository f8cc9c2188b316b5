package repo

import (
	"context"

	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
)

// AssetStore persists assets keyed by their business id. Ids are
// normalized to uppercase before every lookup.
type AssetStore interface {
	// Create fails with apperr.DuplicateKey when the id exists.
	Create(ctx context.Context, a models.Asset) (models.Asset, error)
	// Get fails with apperr.NotFound when absent.
	Get(ctx context.Context, id string) (models.Asset, error)
	// Update applies the set fields of p and returns the post-update asset.
	Update(ctx context.Context, id string, p models.AssetPatch) (models.Asset, error)
	// Delete removes the asset and returns its last state.
	Delete(ctx context.Context, id string) (models.Asset, error)
	// List returns matching assets sorted by id, and their count.
	List(ctx context.Context, f query.Filter) ([]models.Asset, int, error)
	// ListByAssignee returns assets whose assignedUserName equals name.
	ListByAssignee(ctx context.Context, name string) ([]models.Asset, error)
	// Summarize returns grouped counts computed in one pass.
	Summarize(ctx context.Context) (models.AssetStats, error)
}

// CollaboratorStore persists collaborators keyed by internal id, with
// employeeId unique.
type CollaboratorStore interface {
	Create(ctx context.Context, c models.Collaborator) (models.Collaborator, error)
	Get(ctx context.Context, id string) (models.Collaborator, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (models.Collaborator, error)
	Update(ctx context.Context, id string, p models.CollaboratorPatch) (models.Collaborator, error)
	Delete(ctx context.Context, id string) (models.Collaborator, error)
	// List returns matching collaborators sorted by fullName, and their count.
	List(ctx context.Context, f query.Filter) ([]models.Collaborator, int, error)
}

// HistoryStore is append-only: there is no update or delete.
type HistoryStore interface {
	Append(ctx context.Context, e models.HistoryEntry) (models.HistoryEntry, error)
	// ListByAsset returns at most limit entries, newest first.
	ListByAsset(ctx context.Context, assetID string, limit int) ([]models.HistoryEntry, error)
}

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores bundles one driver's implementations.
type Stores struct {
	Driver        string
	Assets        AssetStore
	Collaborators CollaboratorStore
	History       HistoryStore
	Pinger        Pinger
}
