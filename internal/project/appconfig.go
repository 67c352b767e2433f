// Package project persists user preferences and named solver profiles
// under ~/.boxpack.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// MaxRecentInstances bounds AppConfig.RecentInstances.
const MaxRecentInstances = 10

// AppConfig holds user preferences applied by the CLI.
type AppConfig struct {
	// Profile used when no --profile flag is given. Empty means the
	// configured solver settings.
	DefaultProfile string `json:"default_profile"`
	// Box side used for imports that do not carry one.
	DefaultBoxLength int      `json:"default_box_length"`
	RecentInstances  []string `json:"recent_instances"`
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultBoxLength: 100,
		RecentInstances:  []string{},
	}
}

// AddRecentInstance moves path to the front of the recent list.
func (c *AppConfig) AddRecentInstance(path string) {
	c.RecentInstances = slices.DeleteFunc(c.RecentInstances, func(p string) bool { return p == path })
	c.RecentInstances = append([]string{path}, c.RecentInstances...)
	if len(c.RecentInstances) > MaxRecentInstances {
		c.RecentInstances = c.RecentInstances[:MaxRecentInstances]
	}
}

// DefaultConfigDir returns ~/.boxpack, or .boxpack in the working directory
// when the home directory is unknown.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".boxpack")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig writes config as JSON, creating missing parent directories.
func SaveAppConfig(path string, config AppConfig) error {
	return writeJSON(path, config)
}

// LoadAppConfig reads an AppConfig. A missing file yields the defaults.
func LoadAppConfig(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultAppConfig(), nil
		}
		return AppConfig{}, fmt.Errorf("failed to read app config: %w", err)
	}
	config := DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return AppConfig{}, fmt.Errorf("failed to parse app config: %w", err)
	}
	if config.RecentInstances == nil {
		config.RecentInstances = []string{}
	}
	return config, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0644)
}
