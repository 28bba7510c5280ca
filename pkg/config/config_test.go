package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http", cfg.FetchMode)
	assert.Equal(t, 40000, cfg.MaxTextChars)
	assert.Equal(t, 50, cfg.MaxPromptImages)
	assert.Equal(t, 5, cfg.MaxImages)
	assert.Equal(t, 5, cfg.ImageConcurrency)
	assert.Equal(t, "permissive", cfg.AmenityPolicy)
	assert.Equal(t, 48*time.Hour, cfg.CacheTTL())
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("IMAGE_CONCURRENCY", "8")
	t.Setenv("FETCH_MODE", " Browser ")
	t.Setenv("STORAGE_USE_SSL", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 8, cfg.ImageConcurrency)
	assert.Equal(t, "browser", cfg.FetchMode)
	assert.False(t, cfg.StorageUseSSL)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MODEL_NAME=llama3\nMAX_IMAGES=3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "llama3", cfg.ModelName)
	assert.Equal(t, 3, cfg.MaxImages)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_ENDPOINT")
	assert.Contains(t, err.Error(), "STORAGE_BUCKET")

	cfg.ModelEndpoint = "http://localhost:11434"
	cfg.ModelName = "llama3"
	cfg.StorageEndpoint = "localhost:9000"
	cfg.StorageBucket = "listing-images"
	assert.NoError(t, cfg.Validate())

	cfg.AmenityPolicy = "lenient"
	assert.ErrorContains(t, cfg.Validate(), "AMENITY_POLICY")
}
