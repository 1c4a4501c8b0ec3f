package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Factory builds an unconnected backend adapter.
type Factory func(*slog.Logger) Adapter

// ErrNoBackendType is returned by NewAdapter when trino.type resolved to "".
var ErrNoBackendType = errors.New("backend type not set (trino.type)")

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// backendKey folds the configured type so "Trino" and " trino " select the
// same backend as "trino".
func backendKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register makes a backend selectable through trino.type. Backends call it
// from init(); registering a name twice replaces the earlier factory.
func Register(name string, factory Factory) {
	key := backendKey(name)
	if key == "" || factory == nil {
		panic(fmt.Sprintf("adapter: invalid registration for backend %q", name))
	}
	factoriesMu.Lock()
	factories[key] = factory
	factoriesMu.Unlock()
}

// Get looks up the factory for a backend type.
func Get(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[backendKey(name)]
	return f, ok
}

// NewAdapter builds the backend named by cfg.Type. The adapter is returned
// unconnected.
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	if backendKey(cfg.Type) == "" {
		return nil, ErrNoBackendType
	}
	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: ListAdapters()}
	}
	return factory(logger), nil
}

// ListAdapters returns the registered backend types in sorted order.
func ListAdapters() []string {
	factoriesMu.RLock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	factoriesMu.RUnlock()
	slices.Sort(names)
	return names
}

// IsRegistered reports whether trino.type may name this backend.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownAdapterError reports a trino.type value no backend registered.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown backend type %q (available: %s); set trino.type in dami.yaml or ADT_DUMMY_TRINO_TYPE",
		e.Type, strings.Join(e.Available, ", "))
}
