package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/query"
	"github.com/lib/pq"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// NewPostgresStores returns the PostgreSQL-backed stores sharing db.
func NewPostgresStores(db *sql.DB) Stores {
	return Stores{
		Driver:        "postgres",
		Assets:        NewAssetRepo(db),
		Collaborators: NewCollaboratorRepo(db),
		History:       NewHistoryRepo(db),
		Pinger:        dbPinger{db},
	}
}

type dbPinger struct{ db *sql.DB }

func (p dbPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// filterPredicates translates a query.Filter into squirrel predicates.
// columns maps filter field names to column names; a field outside it is a
// programming error, never user input.
func filterPredicates(f query.Filter, columns map[string]string) ([]sq.Sqlizer, error) {
	var preds []sq.Sqlizer
	for _, eq := range f.Equals {
		col, ok := columns[eq.Field]
		if !ok {
			return nil, apperr.Internal("build filter", fmt.Errorf("unknown filter field %q", eq.Field))
		}
		preds = append(preds, sq.Eq{col: eq.Value})
	}
	if f.Search != nil {
		or := sq.Or{}
		for _, field := range f.Search.Fields {
			col, ok := columns[field]
			if !ok {
				return nil, apperr.Internal("build filter", fmt.Errorf("unknown search field %q", field))
			}
			// Case-insensitive POSIX regex; the pattern is bound, never interpolated.
			or = append(or, sq.Expr(col+" ~* ?", f.Search.Pattern))
		}
		preds = append(preds, or)
	}
	return preds, nil
}

func applyPredicates(b sq.SelectBuilder, preds []sq.Sqlizer) sq.SelectBuilder {
	for _, p := range preds {
		b = b.Where(p)
	}
	return b
}
