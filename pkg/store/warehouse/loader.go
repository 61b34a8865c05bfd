// Package warehouse loads market-data tables from SQL warehouses (Databricks
// SQL or Snowflake) configured as named profiles.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"
	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/rs/zerolog"
)

type Loader interface {
	// LoadTable runs query and returns its numeric columns as a table whose
	// target is the column named target.
	LoadTable(ctx context.Context, query, target string) (domain.Table, error)
}

type sqlLoader struct {
	db *sql.DB
}

func NewLoader(db *sql.DB) (Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &sqlLoader{db: db}, nil
}

// Open connects to the warehouse behind a profile.
func Open(ctx context.Context, registry Registry, profile string) (*sql.DB, error) {
	p, err := registry.GetProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	driver, dsn, err := DSN(p)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return db, nil
}

func (l *sqlLoader) LoadTable(ctx context.Context, query, target string) (domain.Table, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return domain.Table{}, fmt.Errorf("market data query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return domain.Table{}, fmt.Errorf("market data columns: %w", err)
	}

	var values [][]float64
	for rows.Next() {
		cells := make([]sql.NullFloat64, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return domain.Table{}, fmt.Errorf("%w: market data row %d: %v", domain.ErrParse, len(values), err)
		}

		row := make([]float64, len(columns))
		for i, c := range cells {
			if !c.Valid {
				return domain.Table{}, fmt.Errorf("%w: market data row %d has NULL %s", domain.ErrParse, len(values), columns[i])
			}
			row[i] = c.Float64
		}
		values = append(values, row)
	}
	if err := rows.Err(); err != nil {
		return domain.Table{}, fmt.Errorf("market data rows: %w", err)
	}

	logger.Debug().Int("rows", len(values)).Strs("columns", columns).Msg("loaded market data")
	return domain.NewTable(columns, values, target)
}
