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
	"github.com/google/uuid"
)

// ==========================
// CollaboratorRepo
// ==========================

const collaboratorTable = "collaborators"

var collaboratorColumns = []string{
	"id", "employee_id", "full_name", "email", "phone", "area", "work_mode", "status", "notes",
	"created_at", "updated_at",
}

var collaboratorFilterColumns = map[string]string{
	"area":       "area",
	"status":     "status",
	"workMode":   "work_mode",
	"fullName":   "full_name",
	"email":      "email",
	"employeeId": "employee_id",
}

type CollaboratorRepo struct {
	DB *sql.DB
}

func NewCollaboratorRepo(db *sql.DB) *CollaboratorRepo {
	return &CollaboratorRepo{DB: db}
}

func scanCollaborator(s rowScanner) (models.Collaborator, error) {
	var c models.Collaborator
	err := s.Scan(
		&c.ID, &c.EmployeeID, &c.FullName, &c.Email, &c.Phone, &c.Area, &c.WorkMode, &c.Status, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func duplicateEmployee(id string, err error) error {
	return apperr.DuplicateKey("collaborator with employeeId "+id+" already exists", err)
}

// ==========================
// Create Collaborator
// ==========================

func (r *CollaboratorRepo) Create(ctx context.Context, c models.Collaborator) (models.Collaborator, error) {
	c.Normalize()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	q, args, err := psql.Insert(collaboratorTable).
		Columns(collaboratorColumns[:9]...).
		Values(c.ID, c.EmployeeID, c.FullName, c.Email, c.Phone, c.Area, c.WorkMode, c.Status, c.Notes).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return models.Collaborator{}, apperr.Internal("build insert collaborator", err)
	}
	if err := r.DB.QueryRowContext(ctx, q, args...).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.Collaborator{}, duplicateEmployee(c.EmployeeID, err)
		}
		return models.Collaborator{}, apperr.Internal("insert collaborator", err)
	}
	return c, nil
}

// ==========================
// Get By ID / Employee ID
// ==========================

func (r *CollaboratorRepo) Get(ctx context.Context, id string) (models.Collaborator, error) {
	// Non-uuid input can never match and would make PostgreSQL reject the cast.
	if _, err := uuid.Parse(id); err != nil {
		return models.Collaborator{}, apperr.NotFound("collaborator not found")
	}
	return r.getBy(ctx, sq.Eq{"id": id})
}

func (r *CollaboratorRepo) GetByEmployeeID(ctx context.Context, employeeID string) (models.Collaborator, error) {
	return r.getBy(ctx, sq.Eq{"employee_id": strings.TrimSpace(employeeID)})
}

func (r *CollaboratorRepo) getBy(ctx context.Context, where sq.Eq) (models.Collaborator, error) {
	q, args, err := psql.Select(collaboratorColumns...).From(collaboratorTable).Where(where).ToSql()
	if err != nil {
		return models.Collaborator{}, apperr.Internal("build select collaborator", err)
	}
	c, err := scanCollaborator(r.DB.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Collaborator{}, apperr.NotFound("collaborator not found")
	}
	if err != nil {
		return models.Collaborator{}, apperr.Internal("select collaborator", err)
	}
	return c, nil
}

// ==========================
// Update Collaborator
// ==========================

func collaboratorPatchColumns(p models.CollaboratorPatch) map[string]any {
	set := map[string]any{}
	if p.EmployeeID != nil {
		set["employee_id"] = *p.EmployeeID
	}
	if p.FullName != nil {
		set["full_name"] = *p.FullName
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Area != nil {
		set["area"] = *p.Area
	}
	if p.WorkMode != nil {
		set["work_mode"] = *p.WorkMode
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	return set
}

func (r *CollaboratorRepo) Update(ctx context.Context, id string, p models.CollaboratorPatch) (models.Collaborator, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Collaborator{}, apperr.NotFound("collaborator not found")
	}
	p = p.Normalized()
	q, args, err := psql.Update(collaboratorTable).
		SetMap(collaboratorPatchColumns(p)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(collaboratorColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Collaborator{}, apperr.Internal("build update collaborator", err)
	}
	c, err := scanCollaborator(r.DB.QueryRowContext(ctx, q, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.Collaborator{}, apperr.NotFound("collaborator not found")
	case isUniqueViolation(err):
		employeeID := ""
		if p.EmployeeID != nil {
			employeeID = *p.EmployeeID
		}
		return models.Collaborator{}, duplicateEmployee(employeeID, err)
	case err != nil:
		return models.Collaborator{}, apperr.Internal("update collaborator", err)
	}
	return c, nil
}

// ==========================
// Delete Collaborator
// ==========================

func (r *CollaboratorRepo) Delete(ctx context.Context, id string) (models.Collaborator, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Collaborator{}, apperr.NotFound("collaborator not found")
	}
	q, args, err := psql.Delete(collaboratorTable).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(collaboratorColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Collaborator{}, apperr.Internal("build delete collaborator", err)
	}
	c, err := scanCollaborator(r.DB.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Collaborator{}, apperr.NotFound("collaborator not found")
	}
	if err != nil {
		return models.Collaborator{}, apperr.Internal("delete collaborator", err)
	}
	return c, nil
}

// ==========================
// List Collaborators
// ==========================

func (r *CollaboratorRepo) List(ctx context.Context, f query.Filter) ([]models.Collaborator, int, error) {
	preds, err := filterPredicates(f, collaboratorFilterColumns)
	if err != nil {
		return nil, 0, err
	}
	q, args, err := applyPredicates(psql.Select(collaboratorColumns...).From(collaboratorTable), preds).
		OrderBy("full_name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, 0, apperr.Internal("build list collaborators", err)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, apperr.Internal("list collaborators", err)
	}
	defer rows.Close()

	out := []models.Collaborator{}
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, 0, apperr.Internal("scan collaborator", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("list collaborators", err)
	}
	return out, len(out), nil
}
