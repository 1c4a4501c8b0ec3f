// Package config provides configuration management for the dami CLI.
//
// Values come from defaults, an optional dami.yaml, ADT_DUMMY_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/adt-dummy/dami/pkg/adapter"
)

// Config holds all CLI configuration options.
type Config struct {
	InCluster          bool              `koanf:"in_cluster" json:"in_cluster" yaml:"in_cluster"`
	Verbose            bool              `koanf:"verbose" json:"verbose" yaml:"verbose"`
	LogLevel           string            `koanf:"log_level" json:"log_level" yaml:"log_level"`
	OutputFormat       string            `koanf:"output" json:"output" yaml:"output"`
	Namespace          string            `koanf:"namespace" json:"namespace" yaml:"namespace"`
	PodSelector        string            `koanf:"pod_selector" json:"pod_selector" yaml:"pod_selector"`
	Pod                string            `koanf:"pod" json:"pod,omitempty" yaml:"pod,omitempty"`
	ExecTimeoutSeconds int               `koanf:"exec_timeout_seconds" json:"exec_timeout_seconds" yaml:"exec_timeout_seconds"`
	KubectlBin         string            `koanf:"kubectl_bin" json:"kubectl_bin" yaml:"kubectl_bin"`
	KubectlContext     string            `koanf:"kubectl_context" json:"kubectl_context,omitempty" yaml:"kubectl_context,omitempty"`
	Editor             string            `koanf:"editor" json:"editor" yaml:"editor"`
	PythonBin          string            `koanf:"python_bin" json:"python_bin" yaml:"python_bin"`
	KeepTmp            bool              `koanf:"keep_tmp" json:"keep_tmp" yaml:"keep_tmp"`
	Trino              *TrinoConfig      `koanf:"trino" json:"trino" yaml:"trino"`
	Clusters           map[string]string `koanf:"clusters" json:"clusters" yaml:"clusters"`
}

// TrinoConfig describes the query backend. Type selects the adapter, so the
// same block can point at a local duckdb or sqlite file for testing.
type TrinoConfig struct {
	Type       string         `koanf:"type" json:"type" yaml:"type"`
	Host       string         `koanf:"host" json:"host,omitempty" yaml:"host,omitempty"`
	Port       int            `koanf:"port" json:"port" yaml:"port"`
	HTTPScheme string         `koanf:"http_scheme" json:"http_scheme" yaml:"http_scheme"`
	User       string         `koanf:"user" json:"user,omitempty" yaml:"user,omitempty"`
	Password   string         `koanf:"password" json:"password,omitempty" yaml:"password,omitempty"`
	Verify     bool           `koanf:"verify" json:"verify" yaml:"verify"`
	Catalog    string         `koanf:"catalog" json:"catalog,omitempty" yaml:"catalog,omitempty"`
	Schema     string         `koanf:"schema" json:"schema,omitempty" yaml:"schema,omitempty"`
	Path       string         `koanf:"path" json:"path,omitempty" yaml:"path,omitempty"`
	Params     map[string]any `koanf:"params" json:"params,omitempty" yaml:"params,omitempty"`
}

// Default configuration values.
const (
	DefaultLogLevel       = "info"
	DefaultOutput         = "auto"
	DefaultNamespace      = "adt-dynamic"
	DefaultPodSelector    = "app.kubernetes.io/name=adt-dummy"
	DefaultExecTimeout    = 60
	DefaultKubectlBin     = "kubectl"
	DefaultEditor         = "vi"
	DefaultPythonBin      = "python3"
	DefaultTrinoType      = "trino"
	DefaultTrinoPort      = 443
	DefaultTrinoScheme    = "https"
	DefaultClusterProd    = "odmt-p-mskdc-mskx5-c15.kaas.raiffeisen.ru"
	DefaultClusterPreview = "odmt-v-dmz5v-msk34-c14.kaas.raiffeisen.ru"
)

// ClusterTargets are the names accepted by "dami go".
var ClusterTargets = []string{"prod", "preview", "test"}

// ExecTimeout returns the kubectl timeout; zero disables it.
func (c *Config) ExecTimeout() time.Duration {
	if c.ExecTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ExecTimeoutSeconds) * time.Second
}

// AdapterConfig converts the trino block into an adapter configuration.
func (c *Config) AdapterConfig() adapter.Config {
	t := c.Trino
	if t == nil {
		t = &TrinoConfig{Type: DefaultTrinoType, Port: DefaultTrinoPort, HTTPScheme: DefaultTrinoScheme}
	}

	params := make(map[string]any, len(t.Params)+2)
	for k, v := range t.Params {
		params[k] = v
	}
	if t.Type == DefaultTrinoType {
		params["http_scheme"] = t.HTTPScheme
		params["verify"] = t.Verify
	}

	return adapter.Config{
		Type:     t.Type,
		Path:     t.Path,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Catalog,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Params:   params,
	}
}

// ClusterEnvKey returns the environment variable overriding a cluster target.
func ClusterEnvKey(target string) string {
	return EnvPrefix + "CLUSTER_" + strings.ToUpper(target)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if c.Trino != nil {
		t := *c.Trino
		if t.Password != "" {
			t.Password = "********"
		}
		out.Trino = &t
	}
	return &out
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		LogLevel:           DefaultLogLevel,
		OutputFormat:       DefaultOutput,
		Namespace:          DefaultNamespace,
		PodSelector:        DefaultPodSelector,
		ExecTimeoutSeconds: DefaultExecTimeout,
		KubectlBin:         DefaultKubectlBin,
		Editor:             DefaultEditor,
		PythonBin:          DefaultPythonBin,
		Trino: &TrinoConfig{
			Type:       DefaultTrinoType,
			Port:       DefaultTrinoPort,
			HTTPScheme: DefaultTrinoScheme,
		},
		Clusters: map[string]string{
			"prod":    DefaultClusterProd,
			"preview": DefaultClusterPreview,
			"test":    "",
		},
	}
}
