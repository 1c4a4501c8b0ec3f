package query

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adt-dummy/dami/internal/testutil"
	"github.com/adt-dummy/dami/pkg/adapter"
	_ "github.com/adt-dummy/dami/pkg/adapters/sqlite"
	"github.com/adt-dummy/dami/pkg/sqlguard"
)

type mockAdapter struct {
	adapter.BaseSQLAdapter
	closed bool
}

func (m *mockAdapter) Connect(context.Context, adapter.Config) error { return nil }
func (m *mockAdapter) DialectName() string                          { return "mock" }
func (m *mockAdapter) Close() error {
	m.closed = true
	return m.BaseSQLAdapter.Close()
}

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock, *mockAdapter) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	m := &mockAdapter{BaseSQLAdapter: adapter.BaseSQLAdapter{DB: db}}
	svc := NewService(nil, func(context.Context) (adapter.Adapter, error) { return m, nil }, testutil.NewTestLogger(t))
	return svc, mock, m
}

func TestService_Prepare(t *testing.T) {
	svc := NewService(nil, nil, testutil.NewTestLogger(t))

	tests := []struct {
		name    string
		req     Request
		want    string
		wantErr error
		wantMsg string
	}{
		{
			name: "params applied",
			req:  Request{SQL: "SELECT * FROM {{T}} WHERE id={{ID}}", Params: []string{"T=foo", "ID=42"}},
			want: "SELECT * FROM foo WHERE id=42",
		},
		{
			name:    "write rejected",
			req:     Request{SQL: "DELETE FROM t"},
			wantErr: sqlguard.ErrSQLRejected,
		},
		{
			name: "write allowed with override",
			req:  Request{SQL: "DELETE FROM t", AllowWrite: true},
			want: "DELETE FROM t",
		},
		{
			name:    "param turns query into a write",
			req:     Request{SQL: "SELECT * FROM {{T}}", Params: []string{"T=t; DROP TABLE u"}},
			wantErr: sqlguard.ErrSQLRejected,
		},
		{
			name:    "invalid param",
			req:     Request{SQL: "SELECT 1", Params: []string{"NOEQUALS"}},
			wantErr: sqlguard.ErrInvalidParam,
		},
		{
			name:    "negative max rows",
			req:     Request{SQL: "SELECT 1", MaxRows: -1},
			wantMsg: "--max-rows must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Prepare(tt.req)
			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), err.Error())
			case tt.wantMsg != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantMsg, err.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestService_RunTruncates(t *testing.T) {
	svc, mock, m := newMockService(t)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), []byte("a")).
		AddRow(int64(2), "b").
		AddRow(int64(3), "c")
	mock.ExpectQuery("SELECT id, name FROM users").WillReturnRows(rows)
	mock.ExpectClose()

	res, err := svc.Run(context.Background(), Request{SQL: "SELECT id, name FROM {{T}}", Params: []string{"T=users"}, MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, [][]any{{int64(1), "a"}, {int64(2), "b"}}, res.Rows)
	assert.True(t, res.Truncated)
	assert.True(t, m.closed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RunUnlimited(t *testing.T) {
	svc, mock, _ := newMockService(t)

	rows := sqlmock.NewRows([]string{"n"}).AddRow(1).AddRow(2).AddRow(3)
	mock.ExpectQuery("SHOW TABLES").WillReturnRows(rows)
	mock.ExpectClose()

	res, err := svc.Run(context.Background(), Request{SQL: "SHOW TABLES", MaxRows: 0})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)
	assert.False(t, res.Truncated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RunRejectedNeverOpens(t *testing.T) {
	opened := false
	logger, logs := testutil.NewCaptureLogger(t)
	svc := NewService(nil, func(context.Context) (adapter.Adapter, error) {
		opened = true
		return nil, errors.New("unexpected")
	}, logger)

	_, err := svc.Run(context.Background(), Request{SQL: "SELECT 1; DROP TABLE t"})
	require.ErrorIs(t, err, sqlguard.ErrSQLRejected)
	assert.Equal(t, sqlguard.RejectionMessage, err.Error())
	assert.False(t, opened)

	line, ok := logs.Find("statement rejected", `statement="DROP TABLE t"`, "forbidden keyword DROP")
	assert.True(t, ok, "rejection should be logged with its reason: %v", logs.Lines())
	assert.Contains(t, line, "level=DEBUG")
	_, ok = logs.Find("executing query")
	assert.False(t, ok, "nothing executes after a rejection")
}

func TestService_RunQueryError(t *testing.T) {
	svc, mock, m := newMockService(t)

	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("catalog missing"))
	mock.ExpectClose()

	_, err := svc.Run(context.Background(), Request{SQL: "SELECT 1", MaxRows: DefaultMaxRows})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog missing")
	assert.True(t, m.closed)
}

func TestService_RunWithoutAdapter(t *testing.T) {
	_, err := NewService(nil, nil, nil).Run(context.Background(), Request{SQL: "SELECT 1"})
	require.Error(t, err)
}

func TestOpenAdapter_SQLite(t *testing.T) {
	logger := testutil.NewTestLogger(t)
	svc := NewService(nil, OpenAdapter(adapter.Config{Type: "sqlite", Path: ":memory:"}, logger), logger)

	res, err := svc.Run(context.Background(), Request{
		SQL:     "WITH t(n) AS (VALUES (1), (2), (3)) SELECT n FROM t ORDER BY n",
		MaxRows: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, res.Columns)
	assert.Len(t, res.Rows, 2)
	assert.True(t, res.Truncated)
}

func TestOpenAdapter_Unknown(t *testing.T) {
	_, err := OpenAdapter(adapter.Config{Type: "oracle"}, nil)(context.Background())
	var unknown *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
}
