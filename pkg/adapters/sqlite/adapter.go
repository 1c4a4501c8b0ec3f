package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/adt-dummy/dami/pkg/adapter"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Params holds SQLite-specific configuration.
type Params struct {
	// ReadOnly opens the database file with mode=ro.
	ReadOnly bool `mapstructure:"read_only"`

	// BusyTimeoutMS sets PRAGMA busy_timeout.
	BusyTimeoutMS int `mapstructure:"busy_timeout_ms"`
}

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "sqlite"
}

// Connect opens the database at cfg.Path (":memory:" when empty).
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	var params Params
	if err := adapter.DecodeParams(cfg.Params, &params); err != nil {
		return err
	}

	dsn := buildDSN(cfg.Path, params)
	a.Logger.Debug("connecting to sqlite", slog.String("dsn", dsn))

	return a.Open(ctx, "sqlite", dsn, cfg)
}

// buildDSN returns a file: URI carrying the mode and pragmas.
func buildDSN(path string, params Params) string {
	if path == "" || path == ":memory:" {
		return ":memory:"
	}

	query := url.Values{}
	if params.ReadOnly {
		query.Set("mode", "ro")
	}
	if params.BusyTimeoutMS > 0 {
		query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", params.BusyTimeoutMS))
	}

	dsn := "file:" + strings.TrimPrefix(path, "file:")
	if encoded := query.Encode(); encoded != "" {
		dsn += "?" + encoded
	}
	return dsn
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
