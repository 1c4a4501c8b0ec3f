// Package adapter provides the database adapter contract used to execute
// queries that passed the read-only guard.
//
// Concrete adapter implementations live in pkg/adapters/ subdirectories and
// register themselves with Register from their init() functions.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds configuration for connecting to a database.
type Config struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any
}

// Rows wraps sql.Rows to provide a consistent interface.
type Rows struct {
	*sql.Rows
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	// The caller owns the returned rows and must close them.
	Query(ctx context.Context, sql string) (*Rows, error)

	// DialectName returns the name of the SQL dialect spoken by the backend.
	DialectName() string
}
