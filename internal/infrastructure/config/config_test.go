package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  database_path: "recon-test.db"
api:
  port: 9090
  allowed_origins:
    - "http://localhost:3000"
  auth_secret: "file-secret"
sources:
  field_service:
    enabled: true
    api_key: "file-key"
    page_size: 25
observability:
  logging:
    level: "debug"
    format: "json"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "recon-test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "file-secret", cfg.API.AuthSecret)
	assert.True(t, cfg.Sources.FieldService.Enabled)
	assert.Equal(t, "file-key", cfg.Sources.FieldService.APIKey)
	assert.Equal(t, 25, cfg.Sources.FieldService.PageSize)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)

	// Omitted fields still get defaults
	assert.Equal(t, "https://api.housecallpro.com", cfg.Sources.FieldService.BaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("RECON_DB_PATH", "env.db")
	os.Setenv("RECON_AUTH_SECRET", "env-secret")
	os.Setenv("HCP_API_KEY", "env-key")
	defer func() {
		os.Unsetenv("RECON_DB_PATH")
		os.Unsetenv("RECON_AUTH_SECRET")
		os.Unsetenv("HCP_API_KEY")
	}()

	cfg := LoadFromEnv()
	assert.Equal(t, "env.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "env-secret", cfg.API.AuthSecret)
	assert.Equal(t, "env-key", cfg.Sources.FieldService.APIKey)
	assert.True(t, cfg.Sources.FieldService.Enabled)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	os.Unsetenv("RECON_DB_PATH")
	os.Unsetenv("RECON_API_PORT")
	os.Unsetenv("HCP_API_KEY")
	os.Unsetenv("HCP_PAGE_SIZE")

	cfg := LoadFromEnv()
	assert.Equal(t, "recon.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 100, cfg.Sources.FieldService.PageSize)
	assert.False(t, cfg.Sources.FieldService.Enabled, "source is disabled without an API key")
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "text", cfg.Observability.Logging.Format)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	os.Setenv("RECON_DB_PATH", "fallback.db")
	defer os.Unsetenv("RECON_DB_PATH")

	cfg := LoadOrEnvWithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestEnvVarExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  database_path: "${TEST_RECON_DB_PATH}"
sources:
  field_service:
    api_key: "${TEST_HCP_KEY}"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	os.Setenv("TEST_RECON_DB_PATH", "expanded.db")
	os.Setenv("TEST_HCP_KEY", "expanded-key")
	defer func() {
		os.Unsetenv("TEST_RECON_DB_PATH")
		os.Unsetenv("TEST_HCP_KEY")
	}()

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "expanded-key", cfg.Sources.FieldService.APIKey)
}
