package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
)

// ========================
// REPOSITORY STRUCT
// ========================

const assetTable = "assets"

var assetColumns = []string{
	"id", "equipment_type", "brand", "model", "serial_number", "status", "location",
	"assigned_user_name", "collaborator_ref", "area", "delivery_date",
	"proof_of_delivery", "proof_of_exchange", "proof_of_return", "notes",
	"created_at", "updated_at",
}

// assetFilterColumns maps filter and search field names to columns.
var assetFilterColumns = map[string]string{
	"id":               "id",
	"status":           "status",
	"location":         "location",
	"area":             "area",
	"equipmentType":    "equipment_type",
	"brand":            "brand",
	"model":            "model",
	"assignedUserName": "assigned_user_name",
	"serialNumber":     "serial_number",
}

type AssetRepo struct {
	DB *sql.DB
}

func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(s rowScanner) (models.Asset, error) {
	var (
		a            models.Asset
		ref          sql.NullString
		deliveryDate sql.NullTime
	)
	err := s.Scan(
		&a.ID, &a.EquipmentType, &a.Brand, &a.Model, &a.SerialNumber, &a.Status, &a.Location,
		&a.AssignedUserName, &ref, &a.Area, &deliveryDate,
		&a.ProofOfDelivery, &a.ProofOfExchange, &a.ProofOfReturn, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return models.Asset{}, err
	}
	if ref.Valid && ref.String != "" {
		a.CollaboratorRef = &ref.String
	}
	if deliveryDate.Valid {
		a.DeliveryDate = models.DateFromTime(&deliveryDate.Time)
	}
	return a, nil
}

func nullableRef(ref *string) any {
	if ref == nil || *ref == "" {
		return nil
	}
	return *ref
}

func nullableDate(d *models.Date) any {
	if t := d.TimePtr(); t != nil {
		return *t
	}
	return nil
}

// ========================
// CREATE ASSET
// ========================

func (r *AssetRepo) Create(ctx context.Context, a models.Asset) (models.Asset, error) {
	a.Normalize()
	q, args, err := psql.Insert(assetTable).
		Columns(assetColumns[:15]...).
		Values(
			a.ID, a.EquipmentType, a.Brand, a.Model, a.SerialNumber, a.Status, a.Location,
			a.AssignedUserName, nullableRef(a.CollaboratorRef), a.Area, nullableDate(a.DeliveryDate),
			a.ProofOfDelivery, a.ProofOfExchange, a.ProofOfReturn, a.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return models.Asset{}, apperr.Internal("build insert asset", err)
	}
	if err := r.DB.QueryRowContext(ctx, q, args...).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.Asset{}, apperr.DuplicateKey("asset "+a.ID+" already exists", err)
		}
		return models.Asset{}, apperr.Internal("insert asset", err)
	}
	return a, nil
}

// ========================
// GET ASSET BY ID
// ========================

func (r *AssetRepo) Get(ctx context.Context, id string) (models.Asset, error) {
	id = models.NormalizeAssetID(id)
	q, args, err := psql.Select(assetColumns...).From(assetTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Asset{}, apperr.Internal("build select asset", err)
	}
	a, err := scanAsset(r.DB.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Asset{}, apperr.NotFound("asset not found")
	}
	if err != nil {
		return models.Asset{}, apperr.Internal("select asset", err)
	}
	return a, nil
}

// ========================
// UPDATE ASSET BY ID
// ========================

func assetPatchColumns(p models.AssetPatch) map[string]any {
	set := map[string]any{}
	if p.EquipmentType != nil {
		set["equipment_type"] = *p.EquipmentType
	}
	if p.Brand != nil {
		set["brand"] = *p.Brand
	}
	if p.Model != nil {
		set["model"] = *p.Model
	}
	if p.SerialNumber != nil {
		set["serial_number"] = *p.SerialNumber
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.AssignedUserName != nil {
		set["assigned_user_name"] = *p.AssignedUserName
	}
	if p.CollaboratorRef != nil {
		set["collaborator_ref"] = nullableRef(p.CollaboratorRef)
	}
	if p.Area != nil {
		set["area"] = *p.Area
	}
	if p.DeliveryDate != nil {
		set["delivery_date"] = nullableDate(p.DeliveryDate)
	}
	if p.ProofOfDelivery != nil {
		set["proof_of_delivery"] = *p.ProofOfDelivery
	}
	if p.ProofOfExchange != nil {
		set["proof_of_exchange"] = *p.ProofOfExchange
	}
	if p.ProofOfReturn != nil {
		set["proof_of_return"] = *p.ProofOfReturn
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	return set
}

func (r *AssetRepo) Update(ctx context.Context, id string, p models.AssetPatch) (models.Asset, error) {
	id = models.NormalizeAssetID(id)
	q, args, err := psql.Update(assetTable).
		SetMap(assetPatchColumns(p.Normalized())).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(assetColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Asset{}, apperr.Internal("build update asset", err)
	}
	a, err := scanAsset(r.DB.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Asset{}, apperr.NotFound("asset not found")
	}
	if err != nil {
		return models.Asset{}, apperr.Internal("update asset", err)
	}
	return a, nil
}

// ========================
// DELETE ASSET BY ID
// ========================

func (r *AssetRepo) Delete(ctx context.Context, id string) (models.Asset, error) {
	id = models.NormalizeAssetID(id)
	q, args, err := psql.Delete(assetTable).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(assetColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Asset{}, apperr.Internal("build delete asset", err)
	}
	a, err := scanAsset(r.DB.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Asset{}, apperr.NotFound("asset not found")
	}
	if err != nil {
		return models.Asset{}, apperr.Internal("delete asset", err)
	}
	return a, nil
}

// ========================
// LIST ASSETS
// ========================

func (r *AssetRepo) List(ctx context.Context, f query.Filter) ([]models.Asset, int, error) {
	preds, err := filterPredicates(f, assetFilterColumns)
	if err != nil {
		return nil, 0, err
	}
	b := applyPredicates(psql.Select(assetColumns...).From(assetTable), preds).OrderBy("id ASC")
	assets, err := r.query(ctx, b)
	if err != nil {
		return nil, 0, err
	}
	return assets, len(assets), nil
}

func (r *AssetRepo) ListByAssignee(ctx context.Context, name string) ([]models.Asset, error) {
	b := psql.Select(assetColumns...).From(assetTable).
		Where(sq.Eq{"assigned_user_name": name}).
		OrderBy("id ASC")
	return r.query(ctx, b)
}

func (r *AssetRepo) query(ctx context.Context, b sq.SelectBuilder) ([]models.Asset, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return nil, apperr.Internal("build list assets", err)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internal("list assets", err)
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, apperr.Internal("scan asset", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list assets", err)
	}
	return assets, nil
}

// ========================
// SUMMARIZE ASSETS
// ========================

// Summarize groups by every dimension at once and folds the groups in Go,
// so all four breakdowns come from a single snapshot.
func (r *AssetRepo) Summarize(ctx context.Context) (models.AssetStats, error) {
	q, args, err := psql.Select("status", "equipment_type", "area", "location", "COUNT(*)").
		From(assetTable).
		GroupBy("status", "equipment_type", "area", "location").
		ToSql()
	if err != nil {
		return models.AssetStats{}, apperr.Internal("build summarize assets", err)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return models.AssetStats{}, apperr.Internal("summarize assets", err)
	}
	defer rows.Close()

	stats := models.NewAssetStats()
	for rows.Next() {
		var status, equipmentType, area, location string
		var n int
		if err := rows.Scan(&status, &equipmentType, &area, &location, &n); err != nil {
			return models.AssetStats{}, apperr.Internal("scan asset group", err)
		}
		stats.Add(status, equipmentType, area, location, n)
	}
	if err := rows.Err(); err != nil {
		return models.AssetStats{}, apperr.Internal("summarize assets", err)
	}
	return stats, nil
}
