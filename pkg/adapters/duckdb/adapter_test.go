package duckdb

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/adt-dummy/dami/internal/query"
	"github.com/adt-dummy/dami/pkg/adapter"
	"github.com/adt-dummy/dami/pkg/sqlguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixture creates a DuckDB file with an events table of n rows.
func writeFixture(t *testing.T, n int) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fixture.duckdb")

	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{Path: path}))
	require.NoError(t, adp.Exec(ctx, "CREATE TABLE events (id INTEGER, kind VARCHAR)"))
	require.NoError(t, adp.Exec(ctx, fmt.Sprintf(
		"INSERT INTO events SELECT i, CASE WHEN i %% 2 = 0 THEN 'even' ELSE 'odd' END FROM range(1, %d) t(i)", n+1)))
	require.NoError(t, adp.Close())
	return path
}

func TestAdapter_FixtureThroughQueryService(t *testing.T) {
	path := writeFixture(t, 5)
	cfg := adapter.Config{Type: "duckdb", Path: path, Params: map[string]any{"read_only": true}}

	opened := 0
	open := func(ctx context.Context) (adapter.Adapter, error) {
		opened++
		return query.OpenAdapter(cfg, nil)(ctx)
	}
	svc := query.NewService(nil, open, nil)
	ctx := context.Background()

	res, err := svc.Run(ctx, query.Request{
		SQL:     "SELECT id, kind FROM events WHERE kind = '{{KIND}}' ORDER BY id",
		Params:  []string{"KIND=odd"},
		MaxRows: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "kind"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.True(t, res.Truncated)
	assert.Equal(t, "1", fmt.Sprint(res.Rows[0][0]))
	assert.Equal(t, "3", fmt.Sprint(res.Rows[1][0]))

	_, err = svc.Run(ctx, query.Request{SQL: "DELETE FROM events", MaxRows: 10})
	require.ErrorIs(t, err, sqlguard.ErrSQLRejected)
	assert.Equal(t, 1, opened, "rejected statements never reach the fixture")
}

func TestAdapter_ReadOnlyFixture(t *testing.T) {
	path := writeFixture(t, 1)
	ctx := context.Background()

	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{Path: path, Params: map[string]any{"read_only": true}}))
	defer func() { _ = adp.Close() }()

	err := adp.Exec(ctx, "INSERT INTO events VALUES (9, 'odd')")
	require.Error(t, err)

	rows, err := adp.Query(ctx, "SELECT count(*) AS n FROM events")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	res, err := adapter.FetchRows(rows.Rows, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", fmt.Sprint(res.Rows[0][0]))
}

func TestAdapter_Settings(t *testing.T) {
	ctx := context.Background()

	t.Run("applied after connect", func(t *testing.T) {
		adp := New(nil)
		require.NoError(t, adp.Connect(ctx, adapter.Config{
			Params: map[string]any{"settings": map[string]any{"threads": "2"}},
		}))
		defer func() { _ = adp.Close() }()

		rows, err := adp.Query(ctx, "SELECT current_setting('threads') AS threads")
		require.NoError(t, err)
		defer func() { _ = rows.Close() }()
		res, err := adapter.FetchRows(rows.Rows, 0)
		require.NoError(t, err)
		assert.Equal(t, "2", fmt.Sprint(res.Rows[0][0]))
	})

	t.Run("unknown setting fails connect", func(t *testing.T) {
		adp := New(nil)
		err := adp.Connect(ctx, adapter.Config{
			Params: map[string]any{"settings": map[string]any{"no_such_setting": "1"}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to apply setting no_such_setting")
		assert.False(t, adp.IsConnected())
	})

	t.Run("invalid params", func(t *testing.T) {
		err := New(nil).Connect(ctx, adapter.Config{Params: map[string]any{"secrets": []any{}}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid adapter params")
	})
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("duckdb"))

	adp, err := adapter.NewAdapter(adapter.Config{Type: "duckdb"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", adp.DialectName())
}
