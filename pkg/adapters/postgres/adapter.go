// Package postgres provides a PostgreSQL database adapter for dami.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/adt-dummy/dami/pkg/adapter"
)

// Params holds PostgreSQL-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// ApplicationName is reported in pg_stat_activity.
	ApplicationName string `mapstructure:"application_name"`

	// ReadOnly opens every transaction read-only on the server side.
	ReadOnly bool `mapstructure:"read_only"`
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
	return "postgres"
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := decodeParams(cfg.Params)
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	return a.Open(ctx, "pgx", buildPostgresDSN(cfg, params), cfg)
}

// decodeParams reads the backend params block, defaulting application_name to dami.
func decodeParams(raw map[string]any) (Params, error) {
	params := Params{ApplicationName: "dami"}
	if err := adapter.DecodeParams(raw, &params); err != nil {
		return Params{}, err
	}
	return params, nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg adapter.Config, params Params) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	parts := []string{
		fmt.Sprintf("host=%s", host),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("dbname=%s", cfg.Database),
		fmt.Sprintf("sslmode=%s", sslmode),
	}
	if cfg.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", quoteValue(cfg.Password)))
	}
	if params.ApplicationName != "" {
		parts = append(parts, fmt.Sprintf("application_name=%s", quoteValue(params.ApplicationName)))
	}
	if params.ReadOnly {
		parts = append(parts, "default_transaction_read_only=on")
	}
	if cfg.Schema != "" {
		parts = append(parts, fmt.Sprintf("search_path=%s", quoteValue(cfg.Schema)))
	}

	return strings.Join(parts, " ")
}

// quoteValue quotes a keyword/value DSN value when it contains spaces or quotes.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
