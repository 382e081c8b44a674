package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func envLookup(key string) string {
	return os.Getenv(key)
}

// Initialize loads deepresearch.yaml and an adjacent .env file (if
// present) from configDir, expands environment references, overlays the
// result onto the documented defaults, and validates the outcome. This
// is the process's sole entry point for configuration.
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)

	envPath := filepath.Join(configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Info("no .env file loaded", "path", envPath, "error", err)
	}

	cfg := Default()

	yamlPath := filepath.Join(configDir, "deepresearch.yaml")
	data, err := os.ReadFile(yamlPath)
	switch {
	case err == nil:
		data = ExpandEnv(data)
		var parsed YAMLConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, NewLoadError("deepresearch.yaml", fmt.Errorf("%w: %v", ErrInvalidYAML, err))
		}
		if err := cfg.applyYAML(&parsed); err != nil {
			return nil, NewLoadError("deepresearch.yaml", err)
		}
	case os.IsNotExist(err):
		log.Info("no deepresearch.yaml found, using defaults", "path", yamlPath)
	default:
		return nil, NewLoadError("deepresearch.yaml", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	log.Info("configuration initialized",
		"storage_kind", cfg.StorageKind,
		"retrieval_kind", cfg.RetrievalKind,
		"max_concurrency", cfg.MaxConcurrency)

	return cfg, nil
}
