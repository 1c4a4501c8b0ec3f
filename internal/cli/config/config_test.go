package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into an empty directory so no dami.yaml is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	chdirTemp(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.False(t, cfg.InCluster)
	assert.Equal(t, DefaultNamespace, cfg.Namespace)
	assert.Equal(t, DefaultPodSelector, cfg.PodSelector)
	assert.Equal(t, 60*time.Second, cfg.ExecTimeout())
	assert.Equal(t, DefaultKubectlBin, cfg.KubectlBin)
	assert.Equal(t, DefaultEditor, cfg.Editor)
	assert.Equal(t, DefaultPythonBin, cfg.PythonBin)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	require.NotNil(t, cfg.Trino)
	assert.Equal(t, "trino", cfg.Trino.Type)
	assert.Equal(t, 443, cfg.Trino.Port)
	assert.Equal(t, "https", cfg.Trino.HTTPScheme)
	assert.False(t, cfg.Trino.Verify)
	assert.Equal(t, DefaultClusterProd, cfg.Clusters["prod"])
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_EnvMapping(t *testing.T) {
	ResetConfig()
	chdirTemp(t)

	t.Setenv("ADT_DUMMY_IN_CLUSTER", "yes")
	t.Setenv("ADT_DUMMY_NAMESPACE", "team-a")
	t.Setenv("ADT_DUMMY_POD_SELECTOR", "app=toolbox")
	t.Setenv("ADT_DUMMY_EXEC_TIMEOUT_SECONDS", "15")
	t.Setenv("ADT_DUMMY_KUBECTL_CONTEXT", "kaas")
	t.Setenv("ADT_DUMMY_KEEP_TMP", "On")
	t.Setenv("ADT_DUMMY_TRINO_HOST", "trino.svc")
	t.Setenv("ADT_DUMMY_TRINO_PORT", "8443")
	t.Setenv("ADT_DUMMY_TRINO_HTTP_SCHEME", "http")
	t.Setenv("ADT_DUMMY_TRINO_USER", "analyst")
	t.Setenv("ADT_DUMMY_TRINO_PASSWORD", "s3cret")
	t.Setenv("ADT_DUMMY_TRINO_VERIFY", "1")
	t.Setenv("ADT_DUMMY_CLUSTER_TEST", "kaas-test")
	t.Setenv("ADT_DUMMY_POD", "")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.True(t, cfg.InCluster)
	assert.Equal(t, "team-a", cfg.Namespace)
	assert.Equal(t, "app=toolbox", cfg.PodSelector)
	assert.Equal(t, 15, cfg.ExecTimeoutSeconds)
	assert.Equal(t, "kaas", cfg.KubectlContext)
	assert.True(t, cfg.KeepTmp)
	assert.Empty(t, cfg.Pod, "empty env values are ignored")
	assert.Equal(t, "trino.svc", cfg.Trino.Host)
	assert.Equal(t, 8443, cfg.Trino.Port)
	assert.Equal(t, "http", cfg.Trino.HTTPScheme)
	assert.Equal(t, "analyst", cfg.Trino.User)
	assert.Equal(t, "s3cret", cfg.Trino.Password)
	assert.True(t, cfg.Trino.Verify)
	assert.Equal(t, "kaas-test", cfg.Clusters["test"])
	assert.Empty(t, cfg.MissingTrinoSettings())
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "bad boolean",
			env:     map[string]string{"ADT_DUMMY_IN_CLUSTER": "maybe"},
			wantErr: "Invalid boolean for ADT_DUMMY_IN_CLUSTER: maybe. Use true/false.",
		},
		{
			name:    "bad nested boolean",
			env:     map[string]string{"ADT_DUMMY_TRINO_VERIFY": "sure"},
			wantErr: "Invalid boolean for ADT_DUMMY_TRINO_VERIFY: sure. Use true/false.",
		},
		{
			name:    "bad integer",
			env:     map[string]string{"ADT_DUMMY_EXEC_TIMEOUT_SECONDS": "soon"},
			wantErr: "Invalid integer for ADT_DUMMY_EXEC_TIMEOUT_SECONDS: soon",
		},
		{
			name:    "bad output mode",
			env:     map[string]string{"ADT_DUMMY_OUTPUT": "xml"},
			wantErr: `invalid output mode "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			chdirTemp(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := chdirTemp(t)
	t.Setenv("TEST_TRINO_PASSWORD", "from-env")

	writeConfig(t, dir, `namespace: from_file
exec_timeout_seconds: 30
keep_tmp: "no"
trino:
  host: trino.example
  user: reader
  password: ${TEST_TRINO_PASSWORD}
  catalog: hive
  schema: default
  params:
    source: dami-test
clusters:
  test: kaas-test
`)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, ConfigFileName, GetConfigFileUsed())
	assert.Equal(t, "from_file", cfg.Namespace)
	assert.Equal(t, 30, cfg.ExecTimeoutSeconds)
	assert.False(t, cfg.KeepTmp)
	assert.Equal(t, "from-env", cfg.Trino.Password)
	assert.Equal(t, "hive", cfg.Trino.Catalog)
	assert.Equal(t, DefaultClusterProd, cfg.Clusters["prod"], "defaults merge with file maps")
	assert.Equal(t, "kaas-test", cfg.Clusters["test"])

	ac := cfg.AdapterConfig()
	assert.Equal(t, "trino", ac.Type)
	assert.Equal(t, "trino.example", ac.Host)
	assert.Equal(t, 443, ac.Port)
	assert.Equal(t, "hive", ac.Database)
	assert.Equal(t, "default", ac.Schema)
	assert.Equal(t, "reader", ac.Username)
	assert.Equal(t, "dami-test", ac.Params["source"])
	assert.Equal(t, "https", ac.Params["http_scheme"])
	assert.Equal(t, false, ac.Params["verify"])
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	dir := chdirTemp(t)

	_, err := LoadConfig(filepath.Join(dir, "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_Precedence(t *testing.T) {
	ResetConfig()
	dir := chdirTemp(t)
	writeConfig(t, dir, "namespace: from_file\npod: file-pod\n")
	t.Setenv("ADT_DUMMY_NAMESPACE", "from_env")
	t.Setenv("ADT_DUMMY_POD", "env-pod")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("namespace", "", "")
	flags.String("pod", "", "")
	flags.String("context", "", "")
	flags.String("output-mode", "", "")
	require.NoError(t, flags.Set("namespace", "from_flag"))
	require.NoError(t, flags.Set("context", "flag-ctx"))
	require.NoError(t, flags.Set("output-mode", "json"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "from_flag", cfg.Namespace, "flag beats env and file")
	assert.Equal(t, "env-pod", cfg.Pod, "env beats file when the flag is unset")
	assert.Equal(t, "flag-ctx", cfg.KubectlContext)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestMissingTrinoSettings(t *testing.T) {
	cfg := &Config{Trino: &TrinoConfig{Type: "trino", User: "u"}}
	assert.Equal(t, []string{"ADT_DUMMY_TRINO_HOST", "ADT_DUMMY_TRINO_PASSWORD"}, cfg.MissingTrinoSettings())

	cfg = &Config{Trino: &TrinoConfig{Type: "sqlite", Path: "fixtures.db"}}
	assert.Empty(t, cfg.MissingTrinoSettings())

	cfg = &Config{}
	assert.Len(t, cfg.MissingTrinoSettings(), 3)
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "y", " on "} {
		got, err := ParseBool("X", v)
		require.NoError(t, err, v)
		assert.True(t, got, v)
	}
	for _, v := range []string{"0", "False", "no", "N", "off"} {
		got, err := ParseBool("X", v)
		require.NoError(t, err, v)
		assert.False(t, got, v)
	}
	_, err := ParseBool("ADT_DUMMY_KEEP_TMP", "2")
	require.Error(t, err)
	assert.Equal(t, "Invalid boolean for ADT_DUMMY_KEEP_TMP: 2. Use true/false.", err.Error())
}

func TestClusterName(t *testing.T) {
	cfg := &Config{Clusters: map[string]string{"prod": "kaas-prod", "test": ""}}

	name, err := cfg.ClusterName("PROD")
	require.NoError(t, err)
	assert.Equal(t, "kaas-prod", name)

	_, err = cfg.ClusterName("test")
	require.Error(t, err)
	assert.Equal(t, "Cluster is not configured. Set ADT_DUMMY_CLUSTER_TEST.", err.Error())
}

func TestConfig_Level(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, (&Config{}).Level())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warn"}).Level())
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "error", Verbose: true}).Level())

	require.Error(t, (&Config{LogLevel: "loud"}).Validate())
}

func TestRedacted(t *testing.T) {
	cfg := &Config{Trino: &TrinoConfig{User: "u", Password: "p"}}
	r := cfg.Redacted()
	assert.Equal(t, "********", r.Trino.Password)
	assert.Equal(t, "p", cfg.Trino.Password)
}

// TestExpandEnvVars tests the expandEnvVars function.
func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single variable", input: "${TEST_VAR_ONE}", expected: "value_one"},
		{name: "multiple variables", input: "${TEST_VAR_ONE}/${TEST_VAR_TWO}", expected: "value_one/value_two"},
		{name: "unset variable stays as-is", input: "${UNSET_VARIABLE}", expected: "${UNSET_VARIABLE}"},
		{name: "no variables", input: "plain string", expected: "plain string"},
		{name: "mixed set and unset", input: "${TEST_VAR_ONE}:${UNSET_VAR}", expected: "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestGetLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()))
}

func TestDefault_MatchesLoadedDefaults(t *testing.T) {
	ResetConfig()
	chdirTemp(t)

	loaded, err := LoadConfig("", nil)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, loaded.Namespace, def.Namespace)
	assert.Equal(t, loaded.PodSelector, def.PodSelector)
	assert.Equal(t, loaded.ExecTimeoutSeconds, def.ExecTimeoutSeconds)
	assert.Equal(t, loaded.OutputFormat, def.OutputFormat)
	assert.Equal(t, loaded.Trino.Type, def.Trino.Type)
	assert.Equal(t, loaded.Trino.Port, def.Trino.Port)
	assert.Equal(t, loaded.Clusters, def.Clusters)
	require.NoError(t, def.Validate())
}
