package commands

// Query backends selectable through trino.type.
import (
	_ "github.com/adt-dummy/dami/pkg/adapters/duckdb"
	_ "github.com/adt-dummy/dami/pkg/adapters/postgres"
	_ "github.com/adt-dummy/dami/pkg/adapters/sqlite"
	_ "github.com/adt-dummy/dami/pkg/adapters/trino"
)
