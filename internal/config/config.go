// Package config loads the backoffice configuration: defaults, then an optional YAML
// file, then BACKOFFICE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. BACKOFFICE_STORAGE_BACKEND.
const EnvPrefix = "BACKOFFICE_"

// Backends accepted by storage.backend.
const (
	BackendMemory = "memory"
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
)

// Config is the full configuration.
type Config struct {
	Storage  Storage  `yaml:"storage" envPrefix:"STORAGE_"`
	Fixtures Fixtures `yaml:"fixtures" envPrefix:"FIXTURES_"`
	Logging  Logging  `yaml:"logging" envPrefix:"LOG_"`
}

// Storage selects and configures the persisted backend.
type Storage struct {
	Backend  string `yaml:"backend" env:"BACKEND"`
	Path     string `yaml:"path" env:"PATH"`
	ReadOnly bool   `yaml:"read_only" env:"READ_ONLY"`
	Quota    int    `yaml:"quota" env:"QUOTA"` // memory backend only, bytes
}

// Fixtures configures the fallback datasets.
type Fixtures struct {
	Builtin      bool          `yaml:"builtin" env:"BUILTIN"`
	Dir          string        `yaml:"dir" env:"DIR"`
	BaseURL      string        `yaml:"base_url" env:"BASE_URL"`
	DataPath     string        `yaml:"data_path" env:"DATA_PATH"` // under base_url, default "data"
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
	WriteThrough bool          `yaml:"write_through" env:"WRITE_THROUGH"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // text or json
	File   string `yaml:"file" env:"FILE"`     // optional, rotated
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Storage: Storage{
			Backend: BackendFS,
			Path:    ".backoffice",
		},
		Fixtures: Fixtures{
			Builtin:      true,
			Timeout:      30 * time.Second,
			WriteThrough: true,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendMemory, BackendFS, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if c.Storage.Backend != BackendMemory && strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, errors.New("storage.path: required for the "+c.Storage.Backend+" backend"))
	}
	if c.Storage.ReadOnly && c.Storage.Backend == BackendMemory {
		errs = append(errs, errors.New("storage.read_only: not supported by the memory backend"))
	}
	if c.Storage.Quota < 0 {
		errs = append(errs, errors.New("storage.quota: must not be negative"))
	}
	if c.Fixtures.Timeout < 0 {
		errs = append(errs, errors.New("fixtures.timeout: must not be negative"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
