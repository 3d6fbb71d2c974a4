// Package config holds user preferences for the passion CLI.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds user preferences.
type Config struct {
	APIBaseURL        string `json:"api_base_url"`
	Theme             string `json:"theme"` // "light" or "dark"
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:        "http://localhost:8000/api/v1",
		Theme:             "light",
		RequestTimeoutSec: 10,
	}
}

// Dir returns the directory where client state lives, honoring the
// PASSION_CONFIG_DIR override.
func Dir() (string, error) {
	if dir := os.Getenv("PASSION_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".passion"), nil
}

// File returns the full path to the config file.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk, falling back to defaults when
// no file exists, then applies environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path, err := File()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return applyEnv(cfg), nil
	}
	if err != nil {
		return applyEnv(cfg), err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), err
	}
	if cfg.RequestTimeoutSec <= 0 {
		cfg.RequestTimeoutSec = DefaultConfig().RequestTimeoutSec
	}

	return applyEnv(cfg), nil
}

// applyEnv lets the environment override the file for one-off runs.
func applyEnv(cfg Config) Config {
	if url := os.Getenv("PASSION_API_URL"); url != "" {
		cfg.APIBaseURL = url
	}
	if theme := os.Getenv("PASSION_THEME"); theme != "" {
		cfg.Theme = theme
	}
	return cfg
}

// Save writes the configuration to disk.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := File()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
