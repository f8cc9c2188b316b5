package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
	"github.com/lib/pq"
)

func assetRows() *sqlmock.Rows {
	return sqlmock.NewRows(assetColumns)
}

func addAssetRow(rows *sqlmock.Rows, id, status, assignee string, ts time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, "Laptop", "Dell", "Latitude", "SN-1", status, "Office",
		assignee, nil, "Finance", nil,
		"", "", "", "",
		ts, ts,
	)
}

func TestAssetRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO assets \(id,equipment_type,.*\) VALUES \(\$1,.*\$15\) RETURNING created_at, updated_at`).
		WithArgs("LAP-001", sqlmock.AnyArg(), "Dell", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), nil, sqlmock.AnyArg(), nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := NewAssetRepo(db)
	asset, err := repo.Create(context.Background(), models.Asset{
		ID:            " lap-001 ",
		EquipmentType: models.EquipmentLaptop,
		Brand:         " Dell ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if asset.ID != "LAP-001" || asset.Brand != "Dell" || asset.Status != models.StatusInWarehouse || asset.Location != models.LocationUnset {
		t.Errorf("unexpected asset: %+v", asset)
	}
	if !asset.CreatedAt.Equal(now) {
		t.Errorf("createdAt not populated: %v", asset.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO assets`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	repo := NewAssetRepo(db)
	_, err = repo.Create(context.Background(), models.Asset{ID: "LAP-001", EquipmentType: models.EquipmentLaptop})
	if !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestAssetRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, equipment_type, .* FROM assets WHERE id = \$1`).
		WithArgs("LAP-001").
		WillReturnRows(addAssetRow(assetRows(), "LAP-001", "Assigned", "ANA TORRES", now))

	repo := NewAssetRepo(db)
	asset, err := repo.Get(context.Background(), "lap-001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if asset.ID != "LAP-001" || asset.Status != models.StatusAssigned || asset.AssignedUserName != "ANA TORRES" {
		t.Errorf("unexpected asset: %+v", asset)
	}
	if asset.CollaboratorRef != nil || asset.DeliveryDate != nil {
		t.Errorf("expected null optional fields, got %+v", asset)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM assets WHERE id = \$1`).
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)

	repo := NewAssetRepo(db)
	_, err = repo.Get(context.Background(), "nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "asset not found" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAssetRepo_Update_SetsOnlyPatchedColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE assets SET notes = \$1, updated_at = NOW\(\) WHERE id = \$2 RETURNING id, equipment_type`).
		WithArgs("new note", "LAP-001").
		WillReturnRows(addAssetRow(assetRows(), "LAP-001", "InOffice", "", now))

	repo := NewAssetRepo(db)
	_, err = repo.Update(context.Background(), "lap-001", models.AssetPatch{Notes: models.Ptr("  new note ")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Update_ClearsCollaboratorRef(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE assets SET collaborator_ref = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(nil, "LAP-001").
		WillReturnRows(addAssetRow(assetRows(), "LAP-001", "InOffice", "", time.Now()))

	repo := NewAssetRepo(db)
	if _, err := repo.Update(context.Background(), "LAP-001", models.AssetPatch{CollaboratorRef: models.Ptr("")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE assets`).WillReturnError(sql.ErrNoRows)

	repo := NewAssetRepo(db)
	_, err = repo.Update(context.Background(), "X", models.AssetPatch{Brand: models.Ptr("HP")})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAssetRepo_Delete_ReturnsSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`DELETE FROM assets WHERE id = \$1 RETURNING id, equipment_type`).
		WithArgs("LAP-001").
		WillReturnRows(addAssetRow(assetRows(), "LAP-001", "Decommissioned", "", time.Now()))

	repo := NewAssetRepo(db)
	asset, err := repo.Delete(context.Background(), "LAP-001")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if asset.Status != models.StatusDecommissioned {
		t.Errorf("unexpected snapshot: %+v", asset)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_List_FilterAndSearch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM assets WHERE status = \$1 AND \(id ~\* \$2 OR brand ~\* \$3 OR model ~\* \$4 OR assigned_user_name ~\* \$5 OR serial_number ~\* \$6\) ORDER BY id ASC`).
		WithArgs("Assigned", `A\+B\(1\)`, `A\+B\(1\)`, `A\+B\(1\)`, `A\+B\(1\)`, `A\+B\(1\)`).
		WillReturnRows(addAssetRow(assetRows(), "A+B(1)", "Assigned", "", now))

	f := query.AssetParams{Status: "Assigned", Search: "A+B(1)"}.Build()
	repo := NewAssetRepo(db)
	assets, total, err := repo.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(assets) != 1 || assets[0].ID != "A+B(1)" {
		t.Errorf("unexpected list: total=%d %+v", total, assets)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_List_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM assets ORDER BY id ASC`).
		WillReturnRows(assetRows())

	repo := NewAssetRepo(db)
	assets, total, err := repo.List(context.Background(), query.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if assets == nil || total != 0 {
		t.Errorf("expected empty non-nil list, got %v (%d)", assets, total)
	}
}

func TestAssetRepo_ListByAssignee(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := assetRows()
	addAssetRow(rows, "LAP-001", "Assigned", "ANA TORRES", now)
	addAssetRow(rows, "MOU-002", "Assigned", "ANA TORRES", now)
	mock.ExpectQuery(`SELECT .* FROM assets WHERE assigned_user_name = \$1 ORDER BY id ASC`).
		WithArgs("ANA TORRES").
		WillReturnRows(rows)

	repo := NewAssetRepo(db)
	assets, err := repo.ListByAssignee(context.Background(), "ANA TORRES")
	if err != nil {
		t.Fatalf("ListByAssignee: %v", err)
	}
	if len(assets) != 2 {
		t.Errorf("expected 2 assets, got %d", len(assets))
	}
}

func TestAssetRepo_Summarize(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT status, equipment_type, area, location, COUNT\(\*\) FROM assets GROUP BY status, equipment_type, area, location`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "equipment_type", "area", "location", "count"}).
			AddRow("Assigned", "Laptop", "Finance", "HomeRemote", 3).
			AddRow("Assigned", "Mouse", "Finance", "Office", 2).
			AddRow("InWarehouse", "Laptop", "", "Warehouse", 1))

	repo := NewAssetRepo(db)
	stats, err := repo.Summarize(context.Background())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if stats.Total != 6 {
		t.Errorf("total = %d, want 6", stats.Total)
	}
	if stats.ByStatus["Assigned"] != 5 || stats.ByEquipmentType["Laptop"] != 4 || stats.ByArea["Finance"] != 5 || stats.ByLocation["Warehouse"] != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if _, ok := stats.ByStatus["InRepair"]; ok {
		t.Errorf("empty groups must not appear: %+v", stats.ByStatus)
	}
}
