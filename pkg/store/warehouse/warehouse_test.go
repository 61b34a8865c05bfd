package warehouse

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilesFile = `
[analytics]
type = databricks
host = https://dbc-1234.cloud.databricks.com
http_path = /sql/1.0/warehouses/abc
token = dapi-secret
catalog = main
schema = market

[finance]
type = snowflake
account = xy12345
user = analyst
password = secret
database = MARKET
warehouse = COMPUTE_WH

[broken]
type = bigquery
`

func writeProfiles(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "warehouses.cfg")
	require.NoError(t, os.WriteFile(path, []byte(profilesFile), 0o600))
	return path
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(writeProfiles(t))
	require.NoError(t, err)
	ctx := context.Background()

	profiles, err := reg.GetProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"analytics", "broken", "finance"}, profiles)

	p, err := reg.GetProfile(ctx, "analytics")
	require.NoError(t, err)
	assert.Equal(t, TypeDatabricks, p.Type)
	assert.Equal(t, "dapi-secret", p.Keys["token"])

	_, err = reg.GetProfile(ctx, "missing")
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	reg, err := NewRegistry(writeProfiles(t))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("databricks", func(t *testing.T) {
		p, err := reg.GetProfile(ctx, "analytics")
		require.NoError(t, err)

		driver, dsn, err := DSN(p)
		require.NoError(t, err)
		assert.Equal(t, "databricks", driver)
		assert.Equal(t, "token:dapi-secret@dbc-1234.cloud.databricks.com/sql/1.0/warehouses/abc?catalog=main&schema=market", dsn)
	})

	t.Run("snowflake", func(t *testing.T) {
		p, err := reg.GetProfile(ctx, "finance")
		require.NoError(t, err)

		driver, dsn, err := DSN(p)
		require.NoError(t, err)
		assert.Equal(t, "snowflake", driver)
		assert.Contains(t, dsn, "analyst")
		assert.Contains(t, dsn, "xy12345")
	})

	t.Run("unsupported", func(t *testing.T) {
		p, err := reg.GetProfile(ctx, "broken")
		require.NoError(t, err)

		_, _, err = DSN(p)
		assert.Error(t, err)
	})

	t.Run("databricks missing token", func(t *testing.T) {
		_, _, err := DSN(Profile{Name: "x", Type: TypeDatabricks, Keys: map[string]string{"host": "h"}})
		assert.Error(t, err)
	})
}

func TestLoader_LoadTable(t *testing.T) {
	const query = "SELECT feature1, feature2, target FROM market"

	t.Run("splits target from features", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(
			sqlmock.NewRows([]string{"feature1", "feature2", "target"}).
				AddRow(1.0, 4.0, 100.0).
				AddRow("2", 5, 200.0),
		)

		loader, err := NewLoader(db)
		require.NoError(t, err)
		table, err := loader.LoadTable(context.Background(), query, "")

		require.NoError(t, err)
		assert.Equal(t, []string{"feature1", "feature2"}, table.Features)
		assert.Equal(t, [][]float64{{1, 4}, {2, 5}}, table.Rows)
		assert.Equal(t, []float64{100, 200}, table.Target)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null cell", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(
			sqlmock.NewRows([]string{"feature1", "target"}).AddRow(nil, 1.0),
		)

		loader, err := NewLoader(db)
		require.NoError(t, err)
		_, err = loader.LoadTable(context.Background(), query, "")

		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("missing target column", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(
			sqlmock.NewRows([]string{"feature1", "revenue"}).AddRow(1.0, 1.0),
		)

		loader, err := NewLoader(db)
		require.NoError(t, err)
		_, err = loader.LoadTable(context.Background(), query, "")

		assert.ErrorIs(t, err, domain.ErrShapeMismatch)
	})
}
