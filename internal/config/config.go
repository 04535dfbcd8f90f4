// Package config holds Grimpo's runtime settings, read from the environment and
// overridden by CLI flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"grimpo/internal/garden"
	"grimpo/internal/storage"
)

// Config holds all Grimpo configuration.
type Config struct {
	// DBPath is the SQLite file; empty means ~/.grimpo.db.
	DBPath string `env:"GRIMPO_DB_PATH"`
	// PlayerKey selects whose garden is opened.
	PlayerKey string `env:"GRIMPO_PLAYER_KEY" envDefault:"main_user"`
	// CatalogPath optionally replaces the built-in catalog with a YAML file.
	CatalogPath string `env:"GRIMPO_CATALOG"`
	LogLevel    string `env:"GRIMPO_LOG_LEVEL" envDefault:"info"`
	HTTPAddr    string `env:"GRIMPO_HTTP_ADDR" envDefault:":8080"`

	PersistMaxTries   uint          `env:"GRIMPO_PERSIST_MAX_TRIES" envDefault:"5"`
	PersistMaxElapsed time.Duration `env:"GRIMPO_PERSIST_MAX_ELAPSED" envDefault:"5s"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.PlayerKey) == "" {
		return errors.New("player key is required")
	}
	if c.PersistMaxTries == 0 {
		return errors.New("persist max tries must be at least 1")
	}
	if c.PersistMaxElapsed <= 0 {
		return errors.New("persist max elapsed must be positive")
	}
	return nil
}

// ResolveDBPath returns the configured database path or the default location.
func (c Config) ResolveDBPath() (string, error) {
	return storage.ResolveDBPath(c.DBPath)
}

// Catalog returns the YAML catalog at CatalogPath, or the built-in one.
func (c Config) Catalog() (*garden.Catalog, error) {
	if strings.TrimSpace(c.CatalogPath) == "" {
		return garden.DefaultCatalog(), nil
	}
	return garden.LoadCatalogFile(c.CatalogPath)
}

// PersisterOptions maps the retry settings onto the garden persister.
func (c Config) PersisterOptions() []garden.PersisterOption {
	return []garden.PersisterOption{garden.WithRetry(c.PersistMaxTries, c.PersistMaxElapsed)}
}
