package duckdb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adt-dummy/dami/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // registers the "duckdb" database/sql driver
)

// Adapter runs queries against a local DuckDB file.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a DuckDB adapter. A nil logger discards output.
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
	return "duckdb"
}

// Connect opens cfg.Path (in-memory when empty) and applies the settings
// from cfg.Params.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	var params Params
	if err := adapter.DecodeParams(cfg.Params, &params); err != nil {
		return err
	}

	dsn := buildDSN(cfg.Path, params)
	a.Logger.Debug("connecting to duckdb", slog.String("dsn", dsn), slog.Bool("read_only", params.ReadOnly))

	if err := a.Open(ctx, "duckdb", dsn, cfg); err != nil {
		return err
	}

	for _, k := range params.settingKeys() {
		if err := a.Exec(ctx, fmt.Sprintf("SET %s = %s", k, quote(params.Settings[k]))); err != nil {
			_ = a.Close()
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
	}
	return nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var _ adapter.Adapter = (*Adapter)(nil)
