package duckdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_BootsReportsTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(Settings{DbPath: dbPath})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO reports (id, title, name, reference, format, sections, failed_sections, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		"report-001", "Investment Analysis Report", "a.pdf", "/reports/a.pdf", "pdf", 6, "[]", time.Now(),
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM reports WHERE id = ?", "report-001").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConn_PrefersTransaction(t *testing.T) {
	db, err := NewDB(Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	assert.Equal(t, Querier(db), Conn(ctx, db))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	assert.Equal(t, Querier(tx), Conn(WithTransaction(ctx, tx), db))
}

func TestInTransaction(t *testing.T) {
	db, err := NewDB(Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	insert := func(ctx context.Context, id string) error {
		_, err := Conn(ctx, db).ExecContext(ctx,
			`INSERT INTO reports (id, title, name, reference, format, sections, failed_sections, created_at)
			 VALUES ($1, 'Investment Analysis Report', 'a.md', '/reports/a.md', 'md', 6, '[]', $2)`,
			id, time.Now())
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&n))
		return n
	}
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := InTransaction(ctx, db, func(ctx context.Context) error {
			assert.NotNil(t, GetTransaction(ctx))
			return insert(ctx, "committed")
		})

		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")

		err := InTransaction(ctx, db, func(ctx context.Context) error {
			require.NoError(t, insert(ctx, "discarded"))
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count())
	})
}
