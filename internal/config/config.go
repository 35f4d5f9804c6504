// Package config loads engine configuration from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultModelDir     = "ml_models"
	defaultModelVersion = "1.0"
	defaultNetwork      = "internal"
)

// Config holds the settings shared by the engine binaries.
type Config struct {
	// DatabaseDSN is the MySQL connection string for the backing store.
	DatabaseDSN string `yaml:"database_dsn"`

	// ModelDir is where serialized model blobs are persisted.
	ModelDir string `yaml:"model_dir"`

	// ModelVersion selects the hotspot model artifact file.
	ModelVersion string `yaml:"model_version"`

	// VerificationNetwork labels integrity verification records.
	VerificationNetwork string `yaml:"verification_network"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ModelDir:            defaultModelDir,
		ModelVersion:        defaultModelVersion,
		VerificationNetwork: defaultNetwork,
	}
}

// Load reads a YAML config file, filling unset fields with defaults.
// An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.ModelDir == "" {
		cfg.ModelDir = defaultModelDir
	}
	if cfg.ModelVersion == "" {
		cfg.ModelVersion = defaultModelVersion
	}
	if cfg.VerificationNetwork == "" {
		cfg.VerificationNetwork = defaultNetwork
	}
	return cfg, nil
}

// HotspotModelPath is the artifact path for the configured model version.
func (c Config) HotspotModelPath() string {
	return filepath.Join(c.ModelDir, fmt.Sprintf("hotspot_model_v%s.json", c.ModelVersion))
}
