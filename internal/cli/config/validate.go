package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/adt-dummy/dami/internal/apperr"
)

var (
	boolKeys = []string{"in_cluster", "verbose", "keep_tmp", "trino.verify"}
	intKeys  = []string{"exec_timeout_seconds", "trino.port"}

	trueValues  = map[string]bool{"1": true, "true": true, "yes": true, "y": true, "on": true}
	falseValues = map[string]bool{"0": true, "false": true, "no": true, "n": true, "off": true}
)

// ParseBool accepts 1/true/yes/y/on and 0/false/no/n/off, case-insensitively.
func ParseBool(name, value string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case trueValues[v]:
		return true, nil
	case falseValues[v]:
		return false, nil
	}
	return false, apperr.Newf("Invalid boolean for %s: %s. Use true/false.", name, value)
}

// ParseInt parses a decimal integer.
func ParseInt(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, apperr.Wrap(err, fmt.Sprintf("Invalid integer for %s: %s", name, value))
	}
	return n, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("invalid output mode %q (want auto, text, markdown or json)", c.OutputFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ExecTimeoutSeconds < 0 {
		return fmt.Errorf("exec_timeout_seconds must be >= 0")
	}
	return nil
}

// Level returns the slog level; verbose forces debug.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return lvl, nil
}

// MissingTrinoSettings lists the environment variables a Trino connection
// still needs. File-backed adapters need none of them.
func (c *Config) MissingTrinoSettings() []string {
	t := c.Trino
	if t == nil {
		t = &TrinoConfig{Type: DefaultTrinoType}
	}
	if t.Type != "" && t.Type != DefaultTrinoType {
		return nil
	}

	var missing []string
	if t.Host == "" {
		missing = append(missing, EnvPrefix+"TRINO_HOST")
	}
	if t.User == "" {
		missing = append(missing, EnvPrefix+"TRINO_USER")
	}
	if t.Password == "" {
		missing = append(missing, EnvPrefix+"TRINO_PASSWORD")
	}
	return missing
}

// ClusterName resolves a "dami go" target.
func (c *Config) ClusterName(target string) (string, error) {
	name := c.Clusters[strings.ToLower(target)]
	if name == "" {
		return "", apperr.Newf("Cluster is not configured. Set %s.", ClusterEnvKey(target))
	}
	return name, nil
}
