// Package trino provides a Trino database adapter for dami.
//
// This file registers the Trino adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/adt-dummy/dami/pkg/adapters/trino"
package trino

import (
	"log/slog"

	"github.com/adt-dummy/dami/pkg/adapter"
)

func init() {
	adapter.Register("trino", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
