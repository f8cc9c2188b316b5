// Package importer loads collaborators and assets from an .xlsx workbook.
//
// Rows go through the same service operations as manual entry, so they get
// the same normalization, defaults, validation and creation history.
package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/service"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Sheet names read from the workbook.
const (
	SheetCollaborators = "Collaborators"
	SheetInventory     = "Inventory"
)

// Counts tallies the rows of one sheet.
type Counts struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
	// Blank rows have no key column and are ignored.
	Blank int `json:"blank"`
}

type Result struct {
	Collaborators Counts `json:"collaborators"`
	Assets        Counts `json:"assets"`
}

type Importer struct {
	Svc    *service.Inventory
	Logger *zap.Logger
	// Actor is recorded on each asset's creation entry.
	Actor string
}

func New(svc *service.Inventory, logger *zap.Logger, actor string) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{Svc: svc, Logger: logger, Actor: actor}
}

// ImportFile opens path and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import reads collaborators first so asset rows can refer to them. A
// missing sheet is skipped; store failures other than duplicates abort.
func (im *Importer) Import(ctx context.Context, f *excelize.File) (Result, error) {
	var res Result
	var err error
	if res.Collaborators, err = im.importSheet(ctx, f, SheetCollaborators, "Employee ID", im.collaboratorRow); err != nil {
		return res, err
	}
	if res.Assets, err = im.importSheet(ctx, f, SheetInventory, "ID", im.assetRow); err != nil {
		return res, err
	}
	return res, nil
}

type row map[string]string

func (r row) get(col string) string { return strings.TrimSpace(r[normalizeHeader(col)]) }

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func (im *Importer) importSheet(ctx context.Context, f *excelize.File, sheet, keyCol string, insert func(context.Context, row) error) (Counts, error) {
	var c Counts
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		im.Logger.Warn("sheet not found, skipping", zap.String("sheet", sheet))
		return c, nil
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return c, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return c, nil
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}

	for i, cells := range rows[1:] {
		r := row{}
		for j, v := range cells {
			if j < len(headers) && headers[j] != "" {
				r[headers[j]] = v
			}
		}
		line := i + 2
		if r.get(keyCol) == "" {
			c.Blank++
			continue
		}
		err := insert(ctx, r)
		if err == nil {
			c.Imported++
			continue
		}
		switch apperr.KindOf(err) {
		case apperr.KindDuplicateKey:
			c.Duplicates++
			im.Logger.Debug("duplicate row skipped", zap.String("sheet", sheet), zap.Int("row", line), zap.String("key", r.get(keyCol)))
		case apperr.KindValidation:
			c.Invalid++
			e, _ := apperr.As(err)
			im.Logger.Warn("invalid row skipped",
				zap.String("sheet", sheet),
				zap.Int("row", line),
				zap.String("key", r.get(keyCol)),
				zap.Any("fields", e.Fields))
		default:
			return c, fmt.Errorf("%s row %d: %w", sheet, line, err)
		}
	}
	im.Logger.Info("sheet imported",
		zap.String("sheet", sheet),
		zap.Int("imported", c.Imported),
		zap.Int("duplicates", c.Duplicates),
		zap.Int("invalid", c.Invalid))
	return c, nil
}

func (im *Importer) collaboratorRow(ctx context.Context, r row) error {
	_, err := im.Svc.CreateCollaborator(ctx, models.Collaborator{
		EmployeeID: r.get("Employee ID"),
		FullName:   r.get("Full Name"),
		Email:      r.get("Email"),
		Phone:      r.get("Phone"),
		Area:       models.OrgArea(r.get("Area")),
		WorkMode:   models.WorkMode(r.get("Work Mode")),
		Status:     models.CollaboratorStatus(r.get("Status")),
		Notes:      r.get("Notes"),
	})
	return err
}

func (im *Importer) assetRow(ctx context.Context, r row) error {
	equipment := models.EquipmentType(r.get("Equipment Type"))
	if equipment == "" {
		equipment = models.EquipmentOther
	}
	a := models.Asset{
		ID:               r.get("ID"),
		EquipmentType:    equipment,
		Brand:            r.get("Brand"),
		Model:            r.get("Model"),
		SerialNumber:     r.get("Serial Number"),
		Status:           models.AssetStatus(r.get("Status")),
		Location:         models.Location(r.get("Location")),
		AssignedUserName: r.get("Assigned User"),
		Area:             r.get("Area"),
		ProofOfDelivery:  r.get("Proof of Delivery"),
		ProofOfExchange:  r.get("Proof of Exchange"),
		ProofOfReturn:    r.get("Proof of Return"),
		Notes:            r.get("Notes"),
	}
	if raw := r.get("Delivery Date"); raw != "" {
		if d, ok := ParseCellDate(raw); ok {
			a.DeliveryDate = &d
		} else {
			im.Logger.Warn("invalid delivery date dropped", zap.String("asset_id", a.ID), zap.String("value", raw))
		}
	}
	_, err := im.Svc.CreateAsset(ctx, a, im.Actor)
	return err
}

// ParseCellDate reads an Excel serial day number or a YYYY-MM-DD / RFC 3339 string.
func ParseCellDate(raw string) (models.Date, bool) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial <= 0 {
			return models.Date{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return models.Date{}, false
		}
		return models.NewDate(t), true
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, false
	}
	return d, true
}
