package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.DatabaseDSN)
	assert.Equal(t, "ml_models", cfg.ModelDir)
	assert.Equal(t, "1.0", cfg.ModelVersion)
	assert.Equal(t, "internal", cfg.VerificationNetwork)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database_dsn: "user:pass@tcp(localhost:3306)/carbon"
model_dir: "/var/lib/carbon/models"
model_version: "2.1"
verification_network: "polygon-testnet"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "user:pass@tcp(localhost:3306)/carbon", cfg.DatabaseDSN)
	assert.Equal(t, "/var/lib/carbon/models", cfg.ModelDir)
	assert.Equal(t, "2.1", cfg.ModelVersion)
	assert.Equal(t, "polygon-testnet", cfg.VerificationNetwork)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database_dsn: dsn-only\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dsn-only", cfg.DatabaseDSN)
	assert.Equal(t, "ml_models", cfg.ModelDir)
	assert.Equal(t, "1.0", cfg.ModelVersion)
	assert.Equal(t, "internal", cfg.VerificationNetwork)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model_dir: [unclosed\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestHotspotModelPath(t *testing.T) {
	cfg := Config{ModelDir: "models", ModelVersion: "1.0"}
	assert.Equal(t, filepath.Join("models", "hotspot_model_v1.0.json"), cfg.HotspotModelPath())
}
