package duckdb

import (
	"net/url"
	"sort"
)

// Params configures a DuckDB fixture database.
type Params struct {
	// ReadOnly opens the file with access_mode=read_only so fixtures stay untouched.
	ReadOnly bool `mapstructure:"read_only"`

	// Settings are applied with SET after connecting, in key order.
	Settings map[string]string `mapstructure:"settings"`
}

// settingKeys returns the setting names in the order they are applied.
func (p Params) settingKeys() []string {
	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildDSN returns the go-duckdb DSN for path. An empty path is in-memory,
// which cannot be opened read-only.
func buildDSN(path string, params Params) string {
	if path == "" || path == ":memory:" {
		return ""
	}
	if !params.ReadOnly {
		return path
	}
	return path + "?" + url.Values{"access_mode": {"read_only"}}.Encode()
}
