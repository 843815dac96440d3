package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/waybook/waybook/internal/localstate"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the runtime configuration. Environment variables are parsed
// from the WAYBOOK_ prefix, e.g. WAYBOOK_DB_DRIVER, WAYBOOK_POSTGRES_DSN.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// DBDriver selects the storage backend: sqlite, postgres, or auto.
	// auto picks postgres when a DSN is present, sqlite otherwise.
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	// SQLitePath is the database file; empty means the default location
	// under the user data directory.
	SQLitePath string `envconfig:"SQLITE_PATH" default:""`

	// PostgresDSN enables the postgres backend when set.
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// MemoryMaxRandom caps random throwbacks per daily generation.
	MemoryMaxRandom int `envconfig:"MEMORY_MAX_RANDOM" default:"3"`

	// MemoryRetentionDays is how long presented memories are kept before
	// cleanup sweeps them.
	MemoryRetentionDays int `envconfig:"MEMORY_RETENTION_DAYS" default:"365"`

	// MemoryKeepUnviewed spares never-viewed memories from cleanup.
	MemoryKeepUnviewed bool `envconfig:"MEMORY_KEEP_UNVIEWED" default:"false"`
}

// ResolveDefaults derives DBDriver when set to "auto" or empty and fills the
// SQLite path from the local data directory.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}

	allowedDB := map[string]bool{"sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
	}
	if c.DBDriver == "sqlite" && c.SQLitePath == "" {
		p, err := localstate.DBPath()
		if err != nil {
			return err
		}
		c.SQLitePath = p
	}
	return nil
}

// New creates a Config by parsing WAYBOOK_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("WAYBOOK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
