package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	return rootCmd.Execute()
}

func TestExtractRejectsInvalidURL(t *testing.T) {
	err := runCommand(t, "extract", "listing/1")

	assert.ErrorContains(t, err, "invalid URL")
}

func TestExtractRequiresConfiguration(t *testing.T) {
	t.Setenv("MODEL_ENDPOINT", "")
	t.Setenv("STORAGE_BUCKET", "")

	err := runCommand(t, "extract", "https://example.com/listing/1")

	assert.ErrorContains(t, err, "invalid configuration")
}

func TestMigrateRequiresPostgres(t *testing.T) {
	t.Setenv("POSTGRES_URL", "")

	err := runCommand(t, "migrate")

	assert.ErrorContains(t, err, "POSTGRES_URL is required")
}

func TestServeRequiresConfiguration(t *testing.T) {
	t.Setenv("MODEL_ENDPOINT", "")

	err := runCommand(t, "serve")

	assert.ErrorContains(t, err, "MODEL_ENDPOINT is required")
}
