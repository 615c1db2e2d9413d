package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"livegrep/search"
)

// Config holds application configuration
type Config struct {
	DebounceMs     int     `json:"debounce_ms"`
	MinQueryLength int     `json:"min_query_length"`
	MaxResults     int     `json:"max_results"`
	PreviewRatio   float64 `json:"preview_ratio"`
	Editor         string  `json:"editor"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DebounceMs:     int(search.DefaultDebounce / time.Millisecond),
		MinQueryLength: search.DefaultMinQueryLength,
		MaxResults:     search.DefaultMaxResults,
		PreviewRatio:   0.5,
	}
}

// Debounce returns the debounce interval as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Path returns the config file location under the user config dir.
func Path() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "livegrep", "config.json")
}

// Load reads the config file, returning defaults when it is absent.
// File values only override fields they actually set.
func Load() (*Config, error) {
	return LoadFromPath(Path())
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to a specific file, creating parent
// directories as needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
