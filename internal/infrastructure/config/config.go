// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg, err := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	rcfg := cfg.ReconcilerConfig()
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
)

// Config represents the entire application configuration
type Config struct {
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	Input         InputConfig         `yaml:"input"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ReconcileConfig holds matching rules
type ReconcileConfig struct {
	DateToleranceDays int    `yaml:"date_tolerance_days"`
	DateLayout        string `yaml:"date_layout"`
}

// InputConfig holds ledger file parsing settings
type InputConfig struct {
	Delimiter string `yaml:"delimiter"`
	HasHeader bool   `yaml:"has_header"`
	Sheet     string `yaml:"sheet"` // XLSX only, empty = first sheet
	TrimSpace bool   `yaml:"trim_space"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Reconcile: ReconcileConfig{
			DateToleranceDays: 1,
			DateLayout:        reconciler.DefaultDateLayout,
		},
		Input: InputConfig{
			Delimiter: ",",
		},
		Storage: StorageConfig{
			DatabasePath: "reconcile.db",
		},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			MaxUploadBytes: 10 << 20,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

// Load reads and parses the config file. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECONCILE_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
// Unset variables keep their defaults; the result is validated.
func LoadFromEnv() (*Config, error) {
	d := Defaults()
	cfg := &Config{
		Reconcile: ReconcileConfig{
			DateToleranceDays: getEnvInt("RECONCILE_DATE_TOLERANCE_DAYS", d.Reconcile.DateToleranceDays),
			DateLayout:        getEnv("RECONCILE_DATE_LAYOUT", d.Reconcile.DateLayout),
		},
		Input: InputConfig{
			Delimiter: getEnv("RECONCILE_CSV_DELIMITER", d.Input.Delimiter),
			HasHeader: getEnvBool("RECONCILE_HAS_HEADER", d.Input.HasHeader),
			Sheet:     getEnv("RECONCILE_XLSX_SHEET", ""),
			TrimSpace: getEnvBool("RECONCILE_TRIM_SPACE", d.Input.TrimSpace),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILE_DB_PATH", d.Storage.DatabasePath),
		},
		API: APIConfig{
			Port:           getEnvInt("RECONCILE_API_PORT", d.API.Port),
			AllowedOrigins: d.API.AllowedOrigins,
			MaxUploadBytes: d.API.MaxUploadBytes,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", d.Observability.Logging.Level),
				Format: getEnv("LOG_FORMAT", d.Observability.Logging.Format),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment config: %w", err)
	}
	return cfg, nil
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() (*Config, error) {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath loads path, or the environment when path does not exist.
// A file that exists but fails to parse or validate is an error.
func LoadOrEnvWithPath(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return LoadFromEnv()
	}
	return nil, err
}

// Validate checks values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	if c.Reconcile.DateToleranceDays < 0 {
		return fmt.Errorf("reconcile.date_tolerance_days must not be negative, got %d", c.Reconcile.DateToleranceDays)
	}
	if c.Reconcile.DateLayout == "" {
		return fmt.Errorf("reconcile.date_layout must not be empty")
	}
	if len([]rune(c.Input.Delimiter)) != 1 {
		return fmt.Errorf("input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	return nil
}

// ReconcilerConfig converts the reconcile section to engine settings
func (c *Config) ReconcilerConfig() reconciler.Config {
	return reconciler.Config{
		DateLayout:    c.Reconcile.DateLayout,
		DateTolerance: c.Reconcile.DateToleranceDays,
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if result, err := strconv.Atoi(val); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvBool retrieves a boolean environment variable with a fallback default
func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if result, err := strconv.ParseBool(val); err == nil {
			return result
		}
	}
	return fallback
}
