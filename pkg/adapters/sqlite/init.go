// Package sqlite provides a SQLite database adapter for dami, backed by the
// pure-Go modernc.org/sqlite driver.
//
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/adt-dummy/dami/pkg/adapters/sqlite"
package sqlite

import (
	"log/slog"

	"github.com/adt-dummy/dami/pkg/adapter"
)

func init() {
	adapter.Register("sqlite", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
