package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objectregistry/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "objreg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Registry.InitialCapacity)
	assert.Equal(t, 1.0, cfg.Registry.HashDensity)
	assert.False(t, cfg.Maintenance.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Maintenance.IntervalDuration())
	assert.True(t, cfg.Maintenance.CleanUp)
	assert.Equal(t, 0.25, cfg.Maintenance.ShrinkRatio)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "none", cfg.Storage.Compression)
	assert.Equal(t, 4, cfg.Workload.Producers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "objreg", cfg.Telemetry.ServiceName)
}

func TestLoad_CustomValues(t *testing.T) {
	content := `
registry:
  initial_capacity: 4096
  hash_density: 2.5
maintenance:
  enabled: true
  interval: 5
  shrink: true
  shrink_ratio: 0.1
database:
  enabled: true
  type: postgres
  host: db.example.com
  port: 5433
  database: objreg
  user: admin
  password: secret
storage:
  type: local
  local_path: /tmp/reports
  compression: zstd
workload:
  producers: 8
  objects: 500
  types: 4
  retain_ratio: 0.75
log:
  format: json
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.Registry.InitialCapacity)
	assert.Equal(t, 2.5, cfg.Registry.HashDensity)
	assert.True(t, cfg.Maintenance.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Maintenance.IntervalDuration())
	assert.True(t, cfg.Maintenance.Shrink)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "objreg", cfg.Database.Database)
	assert.Equal(t, "zstd", cfg.Storage.Compression)
	assert.Equal(t, 8, cfg.Workload.Producers)
	assert.Equal(t, 0.75, cfg.Workload.RetainRatio)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OBJREG_REGISTRY_HASH_DENSITY", "4")
	t.Setenv("OBJREG_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "registry:\n  hash_density: 2\n"))
	require.NoError(t, err)

	assert.Equal(t, 4.0, cfg.Registry.HashDensity)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{
			name:    "zero density",
			content: "registry:\n  hash_density: 0\n",
			message: "hash density",
		},
		{
			name:    "unsupported database",
			content: "database:\n  enabled: true\n  type: oracle\n",
			message: "unsupported database type",
		},
		{
			name:    "missing host",
			content: "database:\n  enabled: true\n  type: mysql\n  host: \"\"\n",
			message: "database host is required",
		},
		{
			name:    "bad compression",
			content: "storage:\n  compression: lz4\n",
			message: "unsupported compression",
		},
		{
			name:    "shrink ratio",
			content: "maintenance:\n  shrink_ratio: 2\n",
			message: "shrink ratio",
		},
		{
			name:    "no producers",
			content: "workload:\n  producers: 0\n",
			message: "producers must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.ErrorIs(t, err, errors.ErrConfigError)
		})
	}
}

func TestLoad_DisabledDatabaseSkipsValidation(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  type: oracle\n"))
	require.NoError(t, err)
	assert.Equal(t, "oracle", cfg.Database.Type)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/objreg.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Registry.InitialCapacity)
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "registry: [unterminated\n"))
	assert.Error(t, err)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
database:
  enabled: true
  type: mysql
  host: mysql.local
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, "mysql.local", cfg.Database.Host)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1.0, cfg.Registry.HashDensity)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_SqliteNeedsPath(t *testing.T) {
	cfg := Default()
	cfg.Database.Enabled = true
	cfg.Database.Type = "sqlite"
	cfg.Database.Path = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path is required")
}
