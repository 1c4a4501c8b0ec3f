// Package duckdb registers a DuckDB adapter under the "duckdb" type.
//
// It backs local fixture files, so dami queries can be exercised without a
// Trino coordinator:
//
//	ADT_DUMMY_TRINO_TYPE=duckdb ADT_DUMMY_TRINO_PATH=fixtures.duckdb dami query --in-cluster "SELECT 1"
package duckdb

import (
	"log/slog"

	"github.com/adt-dummy/dami/pkg/adapter"
)

func init() {
	adapter.Register("duckdb", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
