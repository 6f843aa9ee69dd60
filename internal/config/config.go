// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Observance tables
	DataSource  string // file, yaml, sqlite, postgres
	DataPath    string // table directory, YAML file, or SQLite file
	DatabaseDSN string // Postgres connection string
	ReloadCron  string // cron schedule for table reloads; empty disables

	// Reference calendar used by the alignment check
	ReferenceICSURL string

	// Authentication
	APIKey string // API key for the admin endpoints

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Data source constants
const (
	SourceFile     = "file"
	SourceYAML     = "yaml"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// DefaultReferenceICSURL is a public liturgical calendar maintained
// independently of this project.
const DefaultReferenceICSURL = "https://calendar.google.com/calendar/ical/" +
	"ma7m909q4huvqedci3fbl1u6rg%40group.calendar.google.com/public/basic.ics"

// defaultDataPaths is the DATA_PATH used when it is not set.
var defaultDataPaths = map[string]string{
	SourceFile:   "./data",
	SourceYAML:   "./data/tables.yaml",
	SourceSQLite: "./data/ordinarium.db",
}

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	// This is a no-op in production where env vars are set directly
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Observance tables
	cfg.DataSource = getEnv("DATA_SOURCE", SourceFile)
	cfg.DataPath = getEnv("DATA_PATH", defaultDataPaths[cfg.DataSource])
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "")
	cfg.ReloadCron = getEnv("RELOAD_CRON", "")
	cfg.ReferenceICSURL = getEnv("REFERENCE_ICS_URL", DefaultReferenceICSURL)

	// Authentication
	cfg.APIKey = getEnv("API_KEY", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	// Validate environment
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	// Validate data source and its location
	switch c.DataSource {
	case SourceFile, SourceYAML, SourceSQLite:
		if c.DataPath == "" {
			errs = append(errs, fmt.Errorf("DATA_PATH is required for DATA_SOURCE=%s", c.DataSource))
		}
	case SourcePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for DATA_SOURCE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATA_SOURCE must be one of: file, yaml, sqlite, postgres; got %q", c.DataSource))
	}

	// Reload schedule, when set, must parse
	if c.ReloadCron != "" {
		if _, err := cron.ParseStandard(c.ReloadCron); err != nil {
			errs = append(errs, fmt.Errorf("RELOAD_CRON is not a valid schedule: %w", err))
		}
	}

	// API key is required in production
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	// Validate log level
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	// Validate log format
	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// UsesDatabase reports whether tables are read from a database.
func (c *Config) UsesDatabase() bool {
	return c.DataSource == SourceSQLite || c.DataSource == SourcePostgres
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
