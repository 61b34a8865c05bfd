package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ReportsTableSchema = `
	CREATE TABLE IF NOT EXISTS reports (
		id VARCHAR NOT NULL PRIMARY KEY,
		title VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		reference VARCHAR NOT NULL,
		format VARCHAR NOT NULL,
		sections INTEGER NOT NULL,
		failed_sections VARCHAR,
		created_at TIMESTAMP NOT NULL
	);
`

const ReportsCreatedAtIndex = `
	CREATE INDEX IF NOT EXISTS reports_created_at ON reports (created_at);
`

// Migrations is plain SQL shared by every catalog backend.
var Migrations = []string{
	ReportsTableSchema,
	ReportsCreatedAtIndex,
}

type Settings struct {
	DbPath  string
	Threads int
}

// NewDB opens an embedded database and runs Migrations on every new connection.
func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=%d", settings.DbPath, threads), func(exec driver.ExecerContext) error {
		for _, query := range Migrations {
			if _, err := exec.ExecContext(context.Background(), query, nil); err != nil {
				return fmt.Errorf("boot query failed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}
