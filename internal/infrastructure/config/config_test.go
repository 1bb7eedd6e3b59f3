package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
reconcile:
  date_tolerance_days: 2
  date_layout: "02/01/2006"
input:
  delimiter: ";"
  has_header: true
  sheet: "Ledger"
  trim_space: true
storage:
  database_path: "runs.db"
api:
  port: 9090
  allowed_origins: ["https://books.example.com"]
  max_upload_bytes: 1024
observability:
  logging:
    level: debug
    format: json
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Reconcile.DateToleranceDays)
	assert.Equal(t, "02/01/2006", cfg.Reconcile.DateLayout)
	assert.Equal(t, ";", cfg.Input.Delimiter)
	assert.True(t, cfg.Input.HasHeader)
	assert.Equal(t, "Ledger", cfg.Input.Sheet)
	assert.True(t, cfg.Input.TrimSpace)
	assert.Equal(t, "runs.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"https://books.example.com"}, cfg.API.AllowedOrigins)
	assert.Equal(t, int64(1024), cfg.API.MaxUploadBytes)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "storage:\n  database_path: other.db\n")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "other.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 1, cfg.Reconcile.DateToleranceDays)
	assert.Equal(t, "2006-01-02", cfg.Reconcile.DateLayout)
	assert.Equal(t, ",", cfg.Input.Delimiter)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_RECONCILE_DB", "/tmp/expanded.db")
	path := writeConfig(t, "storage:\n  database_path: ${TEST_RECONCILE_DB}\n")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/tmp/expanded.db", cfg.Storage.DatabasePath)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "invalid yaml", content: "reconcile: [", wantErr: "failed to parse config"},
		{name: "negative tolerance", content: "reconcile:\n  date_tolerance_days: -1\n", wantErr: "date_tolerance_days"},
		{name: "empty layout", content: "reconcile:\n  date_layout: \"\"\n", wantErr: "date_layout"},
		{name: "long delimiter", content: "input:\n  delimiter: \"::\"\n", wantErr: "delimiter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RECONCILE_DB_PATH", "test.db")
	t.Setenv("RECONCILE_DATE_TOLERANCE_DAYS", "3")
	t.Setenv("RECONCILE_CSV_DELIMITER", "\t")
	t.Setenv("RECONCILE_HAS_HEADER", "true")
	t.Setenv("RECONCILE_API_PORT", "9999")
	t.Setenv("RECONCILE_TRIM_SPACE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 3, cfg.Reconcile.DateToleranceDays)
	assert.Equal(t, "\t", cfg.Input.Delimiter)
	assert.True(t, cfg.Input.HasHeader)
	assert.Equal(t, 9999, cfg.API.Port)
	assert.True(t, cfg.Input.TrimSpace)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("RECONCILE_DB_PATH", "")
	t.Setenv("RECONCILE_DATE_TOLERANCE_DAYS", "not-a-number")

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "reconcile.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 1, cfg.Reconcile.DateToleranceDays)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoadOrEnvWithPath_FallbackToEnv(t *testing.T) {
	t.Setenv("RECONCILE_DB_PATH", "fallback.db")

	cfg, err := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "multi-character delimiter", key: "RECONCILE_CSV_DELIMITER", value: "::", wantErr: "delimiter"},
		{name: "negative tolerance", key: "RECONCILE_DATE_TOLERANCE_DAYS", value: "-2", wantErr: "date_tolerance_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := LoadFromEnv()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadOrEnvWithPath_BrokenFileIsAnError(t *testing.T) {
	t.Setenv("RECONCILE_DB_PATH", "fallback.db")

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unparseable yaml", content: "reconcile: [", wantErr: "failed to parse config"},
		{name: "fails validation", content: "input:\n  delimiter: \"::\"\n", wantErr: "delimiter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadOrEnvWithPath(writeConfig(t, tt.content))

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadOrEnvWithPath_ExistingFileWins(t *testing.T) {
	t.Setenv("RECONCILE_DB_PATH", "fallback.db")

	cfg, err := LoadOrEnvWithPath(writeConfig(t, "storage:\n  database_path: file.db\n"))

	require.NoError(t, err)
	assert.Equal(t, "file.db", cfg.Storage.DatabasePath)
}

func TestReconcilerConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Reconcile.DateToleranceDays = 5

	rcfg := cfg.ReconcilerConfig()

	assert.Equal(t, 5, rcfg.DateTolerance)
	assert.Equal(t, "2006-01-02", rcfg.DateLayout)
}
