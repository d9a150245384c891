package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/clients/postgres"
	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
)

// CatalogAdapter reads the scheduling catalog from a PostgreSQL table with
// columns exam_name, site_name, room_name and visit_duration.
type CatalogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	table  string
}

// NewCatalogAdapter creates a catalog source over table.
func NewCatalogAdapter(client *postgres.Client, table string) *CatalogAdapter {
	return &CatalogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		table:  table,
	}
}

// Name identifies the source in logs.
func (a *CatalogAdapter) Name() string {
	return "postgres:" + a.table
}

// LoadRows returns every row. NULL cells load as empty strings and the
// duration column is read as text whatever its SQL type.
func (a *CatalogAdapter) LoadRows(ctx context.Context) ([]entities.CatalogRow, error) {
	query, args, err := a.db.Select(
		goqu.COALESCE(goqu.C("exam_name"), "").As("exam_name"),
		goqu.COALESCE(goqu.C("site_name"), "").As("site_name"),
		goqu.COALESCE(goqu.C("room_name"), "").As("room_name"),
		goqu.COALESCE(goqu.Cast(goqu.C("visit_duration"), "TEXT"), "").As("visit_duration"),
	).From(a.table).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build catalog query", err)
	}

	var rows []entities.CatalogRow
	if err := a.client.DB().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewExternalError("failed to load catalog rows", err)
	}
	return rows, nil
}

const insertBatchSize = 500

// ReplaceRows swaps the table contents for rows in one transaction, keeping
// their order in the id sequence.
func (a *CatalogAdapter) ReplaceRows(ctx context.Context, rows []entities.CatalogRow) (err error) {
	tx, err := a.client.DB().BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewExternalError("failed to begin catalog transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := a.db.Delete(a.table).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build catalog delete", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewExternalError("failed to clear catalog table", err)
	}

	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))

		records := make([]interface{}, 0, end-start)
		for _, r := range rows[start:end] {
			records = append(records, goqu.Record{
				"exam_name":      r.Exam,
				"site_name":      r.Site,
				"room_name":      r.Room,
				"visit_duration": r.Duration,
			})
		}

		query, args, err = a.db.Insert(a.table).Rows(records...).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build catalog insert", err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewExternalError("failed to insert catalog rows", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return apperrors.NewExternalError("failed to commit catalog rows", err)
	}
	return nil
}
