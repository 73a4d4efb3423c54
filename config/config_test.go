package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAMLWithDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
http:
  addr: ":9090"
storage:
  backend: memory
locations:
  - id: loc-1
    name: Main warehouse
    max_capacity: 50
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Dispatch.BatchSize)
	assert.Equal(t, 0.5, cfg.Dispatch.BatchDelaySeconds)
	assert.Equal(t, 2.5, cfg.Dispatch.SingleDelaySeconds)
	assert.Equal(t, "SALES_MANAGER", cfg.Dispatch.ManagerRole)
	assert.False(t, cfg.Receiving.EnforceForManager)
	require.Len(t, cfg.Locations, 1)
	assert.Equal(t, 50, cfg.Locations[0].MaxCapacity)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "storage": {"backend": "sqlite", "path": "test.db"},
  "dispatch": {"batch_size": 5, "manager_role": "WAREHOUSE_LEAD"}
}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "test.db", cfg.Storage.Path)
	assert.Equal(t, "test.db", cfg.Storage.ReportPath)
	assert.Equal(t, 5, cfg.Dispatch.BatchSize)
	assert.Equal(t, "WAREHOUSE_LEAD", cfg.Dispatch.ManagerRole)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
storage:
  backend: memory
`)
	require.NoError(t, os.Setenv("PD_HTTP__ADDR", ":7070"))
	defer func() { _ = os.Unsetenv("PD_HTTP__ADDR") }()

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidStorageBackend(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
storage:
  backend: postgres
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidLocation(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
locations:
  - id: loc-1
    max_capacity: 0
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDispatchConfig_Validate(t *testing.T) {
	c := DispatchConfig{BatchSize: 0}
	c.SetDefaults()
	assert.NoError(t, c.Validate())

	bad := DispatchConfig{BatchSize: -1, BatchDelaySeconds: 0.5, SingleDelaySeconds: 2.5}
	assert.Error(t, bad.Validate())
}
