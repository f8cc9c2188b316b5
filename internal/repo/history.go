package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/google/uuid"
)

// ========================
// HISTORY REPOSITORY
// ========================

const historyTable = "asset_history"

var historyColumns = []string{"id", "asset_id", "kind", "description", "changes", "actor", "created_at"}

// HistoryRepo appends and reads asset history. The table rejects UPDATE
// and DELETE at the database level.
type HistoryRepo struct {
	DB *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{DB: db}
}

// NewHistoryID returns a time-ordered UUIDv7. Ids generated by one process
// sort in creation order, which breaks ties between equal timestamps.
func NewHistoryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ========================
// APPEND ENTRY
// ========================

func (r *HistoryRepo) Append(ctx context.Context, e models.HistoryEntry) (models.HistoryEntry, error) {
	if e.ID == "" {
		e.ID = NewHistoryID()
	}
	if e.Changes == nil {
		e.Changes = []models.Change{}
	}
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return models.HistoryEntry{}, apperr.Internal("encode history changes", err)
	}
	q, args, err := psql.Insert(historyTable).
		Columns(historyColumns[:6]...).
		Values(e.ID, e.AssetID, e.Kind, e.Description, changes, e.Actor).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return models.HistoryEntry{}, apperr.Internal("build insert history", err)
	}
	if err := r.DB.QueryRowContext(ctx, q, args...).Scan(&e.Timestamp); err != nil {
		return models.HistoryEntry{}, apperr.Internal("insert history", err)
	}
	return e, nil
}

// ========================
// LIST BY ASSET
// ========================

func (r *HistoryRepo) ListByAsset(ctx context.Context, assetID string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > models.HistoryLimit {
		limit = models.HistoryLimit
	}
	q, args, err := psql.Select(historyColumns...).
		From(historyTable).
		Where(sq.Eq{"asset_id": models.NormalizeAssetID(assetID)}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, apperr.Internal("build list history", err)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internal("list history", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var (
			e   models.HistoryEntry
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.AssetID, &e.Kind, &e.Description, &raw, &e.Actor, &e.Timestamp); err != nil {
			return nil, apperr.Internal("scan history", err)
		}
		e.Changes = []models.Change{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.Changes); err != nil {
				return nil, apperr.Internal("decode history changes", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list history", err)
	}
	return entries, nil
}
