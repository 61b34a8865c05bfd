// Package catalog records every persisted report artifact. Queries use $n
// placeholders, which both DuckDB and Postgres accept.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/models/store"
	"github.com/de-tools/viability/pkg/store/duckdb"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const DefaultListLimit = 50

type Store interface {
	Add(ctx context.Context, report store.Report) error
	Get(ctx context.Context, id string) (store.Report, error)
	List(ctx context.Context, limit int) ([]store.Report, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

// Open connects to the catalog database. driver is "duckdb" (dsn is a file
// path or ":memory:") or "pgx" (dsn is a Postgres URL).
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "duckdb":
		return duckdb.NewDB(duckdb.Settings{DbPath: dsn})
	case "pgx":
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres catalog: %w", err)
		}
		for _, query := range duckdb.Migrations {
			if _, err := db.ExecContext(ctx, query); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to migrate postgres catalog: %w", err)
			}
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported catalog driver: %s", driver)
	}
}

func (s *defaultStore) Add(ctx context.Context, report store.Report) error {
	failed, err := json.Marshal(report.FailedSections)
	if err != nil {
		return fmt.Errorf("marshal failed sections: %w", err)
	}

	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		_, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, `
			INSERT INTO reports (
				id, title, name, reference, format, sections, failed_sections, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8
			)`,
			report.ID,
			report.Title,
			report.Name,
			report.Reference,
			report.Format,
			report.Sections,
			string(failed),
			report.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert report: %w", err)
		}
		return nil
	})
}

const selectColumns = `id, title, name, reference, format, sections, failed_sections, created_at`

func (s *defaultStore) Get(ctx context.Context, id string) (store.Report, error) {
	row := duckdb.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM reports WHERE id = $1`, id)

	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Report{}, fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return store.Report{}, fmt.Errorf("query report: %w", err)
	}
	return report, nil
}

func (s *defaultStore) List(ctx context.Context, limit int) ([]store.Report, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+selectColumns+` FROM reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]store.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (store.Report, error) {
	var (
		report store.Report
		failed sql.NullString
	)
	if err := row.Scan(
		&report.ID,
		&report.Title,
		&report.Name,
		&report.Reference,
		&report.Format,
		&report.Sections,
		&failed,
		&report.CreatedAt,
	); err != nil {
		return store.Report{}, err
	}
	if failed.Valid && failed.String != "" {
		if err := json.Unmarshal([]byte(failed.String), &report.FailedSections); err != nil {
			return store.Report{}, fmt.Errorf("unmarshal failed sections: %w", err)
		}
	}
	return report, nil
}
