// Package query prepares guarded SQL and executes it through an adapter.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/pkg/adapter"
	"github.com/adt-dummy/dami/pkg/sqlguard"
)

// DefaultMaxRows is the row limit applied when none is given.
const DefaultMaxRows = 200

// Request is a single query invocation.
type Request struct {
	SQL        string
	Params     []string
	AllowWrite bool
	// MaxRows limits the result; 0 disables the limit.
	MaxRows int
}

// OpenFunc returns a connected adapter.
type OpenFunc func(ctx context.Context) (adapter.Adapter, error)

// Service runs requests against the configured backend.
type Service struct {
	Guard  *sqlguard.Guard
	Open   OpenFunc
	Logger *slog.Logger
}

// NewService creates a Service. A nil guard uses the default policy.
func NewService(guard *sqlguard.Guard, open OpenFunc, logger *slog.Logger) *Service {
	if guard == nil {
		guard = sqlguard.NewGuard(nil)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{Guard: guard, Open: open, Logger: logger}
}

// Prepare validates req, substitutes parameters and, unless writes are
// allowed, enforces the read-only guard. It returns the SQL to execute.
func (s *Service) Prepare(req Request) (string, error) {
	if req.MaxRows < 0 {
		return "", apperr.New("--max-rows must be >= 0")
	}

	params, err := sqlguard.ParseParams(req.Params)
	if err != nil {
		return "", err
	}
	sql := sqlguard.ApplyParams(req.SQL, params)

	if req.AllowWrite {
		s.Logger.Debug("read-only guard bypassed", slog.Bool("allow_write", true))
		return sql, nil
	}

	report := s.Guard.Analyze(sql)
	for _, v := range report.Rejected() {
		s.Logger.Debug("statement rejected",
			slog.String("statement", v.Statement),
			slog.String("reason", v.Reason))
	}
	if !report.ReadOnly() {
		return "", sqlguard.ErrSQLRejected
	}
	return sql, nil
}

// Run prepares and executes req, returning at most req.MaxRows rows.
func (s *Service) Run(ctx context.Context, req Request) (result *adapter.ResultSet, err error) {
	sql, err := s.Prepare(req)
	if err != nil {
		return nil, err
	}
	if s.Open == nil {
		return nil, errors.New("query service has no adapter configured")
	}

	a, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close connection: %w", cerr)
		}
	}()

	s.Logger.Debug("executing query", slog.String("dialect", a.DialectName()), slog.Int("max_rows", req.MaxRows))

	rows, err := a.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err = adapter.FetchRows(rows.Rows, req.MaxRows)
	if err != nil {
		return nil, err
	}

	s.Logger.Debug("query finished", slog.Int("rows", len(result.Rows)), slog.Bool("truncated", result.Truncated))
	return result, nil
}

// OpenAdapter returns an OpenFunc that builds the adapter registered for
// cfg.Type and connects it.
func OpenAdapter(cfg adapter.Config, logger *slog.Logger) OpenFunc {
	return func(ctx context.Context) (adapter.Adapter, error) {
		a, err := adapter.NewAdapter(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := a.Connect(ctx, cfg); err != nil {
			return nil, err
		}
		return a, nil
	}
}
