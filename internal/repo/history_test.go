package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/inventory/internal/models"
	"github.com/google/uuid"
)

func TestHistoryRepo_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO asset_history \(id,asset_id,kind,description,changes,actor\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6\) RETURNING created_at`).
		WithArgs(sqlmock.AnyArg(), "LAP-001", "Edit", "Modified: status",
			[]byte(`[{"field":"status","previousValue":"InWarehouse","newValue":"Assigned"}]`), "ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	repo := NewHistoryRepo(db)
	e, err := repo.Append(context.Background(), models.HistoryEntry{
		AssetID:     "LAP-001",
		Kind:        models.HistoryEdit,
		Description: "Modified: status",
		Changes:     []models.Change{{Field: "status", PreviousValue: "InWarehouse", NewValue: "Assigned"}},
		Actor:       "ana@example.com",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if e.ID == "" || !e.Timestamp.Equal(now) {
		t.Errorf("unexpected entry: %+v", e)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestHistoryRepo_Append_NilChangesStoredAsEmptyArray(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO asset_history`).
		WithArgs(sqlmock.AnyArg(), "LAP-001", "Creation", "Asset LAP-001 created", []byte(`[]`), "system").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	repo := NewHistoryRepo(db)
	e, err := repo.Append(context.Background(), models.HistoryEntry{
		AssetID:     "LAP-001",
		Kind:        models.HistoryCreation,
		Description: "Asset LAP-001 created",
		Actor:       "system",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if e.Changes == nil {
		t.Error("changes should be an empty slice")
	}
}

func TestHistoryRepo_ListByAsset(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	later := time.Now()
	earlier := later.Add(-time.Hour)
	mock.ExpectQuery(`SELECT id, asset_id, kind, description, changes, actor, created_at FROM asset_history WHERE asset_id = \$1 ORDER BY created_at DESC, id DESC LIMIT 50`).
		WithArgs("LAP-001").
		WillReturnRows(sqlmock.NewRows(historyColumns).
			AddRow("h2", "LAP-001", "Edit", "Modified: area", []byte(`[{"field":"area","previousValue":"","newValue":"Finance"}]`), "system", later).
			AddRow("h1", "LAP-001", "Creation", "Asset LAP-001 created", []byte(`[]`), "system", earlier))

	repo := NewHistoryRepo(db)
	entries, err := repo.ListByAsset(context.Background(), "lap-001", 500)
	if err != nil {
		t.Fatalf("ListByAsset: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "h2" || entries[1].Kind != models.HistoryCreation {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if len(entries[0].Changes) != 1 || entries[0].Changes[0].NewValue != "Finance" {
		t.Errorf("changes not decoded: %+v", entries[0].Changes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestNewHistoryID_SortsInCreationOrder(t *testing.T) {
	prev := NewHistoryID()
	for i := 0; i < 1000; i++ {
		id := NewHistoryID()
		if id <= prev {
			t.Fatalf("id %d not after its predecessor: %s <= %s", i, id, prev)
		}
		parsed, err := uuid.Parse(id)
		if err != nil || parsed.Version() != 7 {
			t.Fatalf("want a version 7 uuid, got %s (%v)", id, err)
		}
		prev = id
	}
}
