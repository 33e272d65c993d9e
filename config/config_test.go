package config_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/schemactl/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
registry:
  backend: oci
  group: billing
  timeout: 5s
  oci:
    host: localhost:5000
    prefix: schemas
    plain_http: true
log:
  level: debug
  format: json
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, config.BackendOCI, cfg.Registry.Backend)
	assert.Equal(t, "billing", cfg.Registry.Group)
	assert.Equal(t, "localhost:5000", cfg.Registry.OCI.Host)
	assert.True(t, cfg.Registry.OCI.PlainHTTP)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 1000, cfg.Registry.SearchLimit, "unset keys keep defaults")
	assert.Equal(t, "schemactl.lock", cfg.Lockfile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "registry:\n  url: http://file.example.com/apis/registry/v3\n")
	cfg, err := config.Load(path, env(map[string]string{
		config.EnvRegistryURL: "https://env.example.com/apis/registry/v3",
		config.EnvGroup:       "payments",
		config.EnvLogLevel:    "WARN",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/apis/registry/v3", cfg.Registry.URL)
	assert.Equal(t, "payments", cfg.Registry.Group)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "unknown key", content: "registry:\n  uri: http://x\n"},
		{name: "unknown backend", content: "registry:\n  backend: kafka\n"},
		{name: "bad timeout", content: "registry:\n  timeout: soon\n"},
		{name: "zero search limit", content: "registry:\n  search_limit: 0\n"},
		{name: "oci without host", content: "registry:\n  backend: oci\n"},
		{name: "bad url", content: "registry:\n  url: ftp://x\n"},
		{name: "malformed yaml", content: "registry: [\n"},
		{name: "bad env backend", content: "", env: map[string]string{config.EnvBackend: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Load(writeConfig(t, tt.content), env(tt.env))
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestSchema(t *testing.T) {
	t.Parallel()

	data, err := config.Schema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, false, doc["additionalProperties"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "registry")
	assert.Contains(t, props, "log")
	assert.Contains(t, props, "lockfile")
}
