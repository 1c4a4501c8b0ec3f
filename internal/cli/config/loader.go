package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of every environment variable dami reads.
const EnvPrefix = "ADT_DUMMY_"

// Config file names searched in the working directory.
const (
	ConfigFileName    = "dami.yaml"
	ConfigFileNameAlt = "dami.yml"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
	// envOrigins maps a config key to the environment variable that set it.
	envOrigins = map[string]string{}
)

// findConfigFile finds the config file to use.
// Priority: explicit path > dami.yaml > dami.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
	envOrigins = map[string]string{}
}

func defaults() map[string]any {
	return map[string]any{
		"in_cluster":           false,
		"verbose":              false,
		"log_level":            DefaultLogLevel,
		"output":               DefaultOutput,
		"namespace":            DefaultNamespace,
		"pod_selector":         DefaultPodSelector,
		"exec_timeout_seconds": DefaultExecTimeout,
		"kubectl_bin":          DefaultKubectlBin,
		"editor":               DefaultEditor,
		"python_bin":           DefaultPythonBin,
		"keep_tmp":             false,
		"trino.type":           DefaultTrinoType,
		"trino.port":           DefaultTrinoPort,
		"trino.http_scheme":    DefaultTrinoScheme,
		"trino.verify":         false,
		"clusters.prod":        DefaultClusterProd,
		"clusters.preview":     DefaultClusterPreview,
		"clusters.test":        "",
	}
}

// envToKey maps ADT_DUMMY_TRINO_HTTP_SCHEME to trino.http_scheme and
// ADT_DUMMY_CLUSTER_PROD to clusters.prod; other names become lower snake case.
func envToKey(name string) string {
	s := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if rest, ok := strings.CutPrefix(s, "trino_"); ok {
		return "trino." + rest
	}
	if rest, ok := strings.CutPrefix(s, "cluster_"); ok {
		return "clusters." + rest
	}
	return s
}

// flagToKey maps root flags onto config keys.
func flagToKey(name string) string {
	switch name {
	case "context":
		return "kubectl_context"
	case "output-mode":
		return "output"
	}
	return strings.ReplaceAll(name, "-", "_")
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")
	envOrigins = map[string]string{}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (ADT_DUMMY_ prefix). Empty values count as unset.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(name, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		key := envToKey(name)
		envOrigins[key] = name
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return flagToKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Coerce loosely typed values so errors name the variable that set them
	if err := normalizeTypes(); err != nil {
		return nil, err
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.Trino == nil {
		cfg.Trino = &TrinoConfig{Type: DefaultTrinoType, Port: DefaultTrinoPort, HTTPScheme: DefaultTrinoScheme}
	}

	expandTrinoEnvVars(cfg.Trino)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// normalizeTypes rewrites string values of boolean and integer keys.
func normalizeTypes() error {
	for _, key := range boolKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		b, err := ParseBool(sourceName(key), raw)
		if err != nil {
			return err
		}
		if err := k.Set(key, b); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	for _, key := range intKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		n, err := ParseInt(sourceName(key), raw)
		if err != nil {
			return err
		}
		if err := k.Set(key, n); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// sourceName is the env var that set key, or key itself.
func sourceName(key string) string {
	if name, ok := envOrigins[key]; ok {
		return name
	}
	return key
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// SetCurrentConfig replaces the loaded configuration. Used by tests.
func SetCurrentConfig(cfg *Config) {
	currentConfig = cfg
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.New(slog.DiscardHandler)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandTrinoEnvVars expands environment variables in sensitive fields.
func expandTrinoEnvVars(t *TrinoConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Path = expandEnvVars(t.Path)
}
