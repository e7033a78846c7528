// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Storage backends for persisted selections.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// DefaultConfigFile is looked up in the working directory when no --config is given.
const DefaultConfigFile = "resume-site.json"

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	SiteDir         string `json:"site_dir,omitempty"`         // Root holding data/, css/ and resources/
	OutputDir       string `json:"output_dir,omitempty"`       // Destination of the build command
	PreferencesFile string `json:"preferences_file,omitempty"` // JSON file used by the file storage backend

	// Server
	Port     int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Storage  string `json:"storage,omitempty" validate:"omitempty,oneof=memory file postgres"`
	Profile  string `json:"profile,omitempty"`                                              // Preference profile for the postgres backend
	Database string `json:"database_url,omitempty" validate:"required_if=Storage postgres"` // PostgreSQL connection URL

	// Rendering
	DefaultResume string `json:"default_resume,omitempty"` // Document rendered first; defaults to the first manifest entry
	Sanitize      bool   `json:"sanitize,omitempty"`       // Sanitize résumé values instead of trusting them
	WatchdogMS    int    `json:"watchdog_ms,omitempty" validate:"omitempty,min=1"`

	// Export
	ChromePath string `json:"chrome_path,omitempty"` // Chrome or Chromium executable

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		SiteDir:         ".",
		OutputDir:       "dist",
		PreferencesFile: ".resume-site/preferences.json",
		Port:            8080,
		Storage:         StorageFile,
		WatchdogMS:      2000,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from DATABASE_URL, CHROME_PATH and RESUME_SITE_PORT.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		c.ChromePath = v
	}
	if v := os.Getenv("RESUME_SITE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: RESUME_SITE_PORT must be a number: %w", err)
		}
		c.Port = port
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.SiteDir != "" {
		info, err := os.Stat(c.SiteDir)
		if os.IsNotExist(err) {
			return fmt.Errorf("config error: site directory not found: %s", c.SiteDir)
		}
		if err == nil && !info.IsDir() {
			return fmt.Errorf("config error: site_dir is not a directory: %s", c.SiteDir)
		}
	}

	return nil
}

// Watchdog returns the renderer watchdog as a duration.
func (c *Config) Watchdog() time.Duration {
	return time.Duration(c.WatchdogMS) * time.Millisecond
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.SiteDir == "" {
		result.SiteDir = defaults.SiteDir
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.PreferencesFile == "" {
		result.PreferencesFile = defaults.PreferencesFile
	}
	if result.Storage == "" {
		result.Storage = defaults.Storage
	}
	if result.Profile == "" {
		result.Profile = defaults.Profile
	}
	if result.Database == "" {
		result.Database = defaults.Database
	}
	if result.DefaultResume == "" {
		result.DefaultResume = defaults.DefaultResume
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.WatchdogMS == 0 {
		result.WatchdogMS = defaults.WatchdogMS
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
