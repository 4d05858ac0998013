// Package config loads idleforge settings from a YAML file and
// IDLEFORGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	forgeerrors "github.com/felixgeelhaar/idleforge/internal/errors"
	"github.com/felixgeelhaar/idleforge/internal/storage"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IDLEFORGE_"

// Config is the full configuration of the CLI.
type Config struct {
	PacksDir         string          `yaml:"packs_dir,omitempty" env:"PACKS_DIR"`
	ActivePacks      []string        `yaml:"active_packs,omitempty" env:"ACTIVE_PACKS" envSeparator:","`
	EquipmentFile    string          `yaml:"equipment_file,omitempty" env:"EQUIPMENT_FILE"`
	TickInterval     time.Duration   `yaml:"tick_interval,omitempty" env:"TICK_INTERVAL"`
	AutosaveInterval time.Duration   `yaml:"autosave_interval,omitempty" env:"AUTOSAVE_INTERVAL"`
	Storage          StorageConfig   `yaml:"storage,omitempty" envPrefix:"STORAGE_"`
	Log              LogConfig       `yaml:"log,omitempty" envPrefix:"LOG_"`
	Metrics          MetricsConfig   `yaml:"metrics,omitempty" envPrefix:"METRICS_"`
	Telemetry        TelemetryConfig `yaml:"telemetry,omitempty" envPrefix:"TELEMETRY_"`
}

// StorageConfig selects where the save lives.
type StorageConfig struct {
	Backend string `yaml:"backend,omitempty" env:"BACKEND"` // "memory", "file", "sqlite"
	Path    string `yaml:"path,omitempty" env:"PATH"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty" env:"LEVEL"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format,omitempty" env:"FORMAT"` // "json", "text"
}

type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty" env:"ADDR"`
}

type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled,omitempty" env:"ENABLED"`
	Endpoint   string  `yaml:"endpoint,omitempty" env:"ENDPOINT"`
	Insecure   bool    `yaml:"insecure,omitempty" env:"INSECURE"`
	SampleRate float64 `yaml:"sample_rate,omitempty" env:"SAMPLE_RATE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PacksDir:         "content/packs",
		TickInterval:     100 * time.Millisecond,
		AutosaveInterval: 10 * time.Second,
		Storage: StorageConfig{
			Backend: string(storage.BackendFile),
			Path:    defaultDataDir(),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			SampleRate: 1.0,
		},
	}
}

// DefaultPath returns $HOME/.idleforge/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".idleforge", "config.yaml")
	}
	return filepath.Join(home, ".idleforge", "config.yaml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".idleforge"
	}
	return filepath.Join(home, ".idleforge")
}

// Load reads path over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, forgeerrors.Wrap(forgeerrors.ErrCodeFileReadFailed, "failed to read config", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, forgeerrors.NewFileUnmarshalError(path, "YAML", err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, forgeerrors.Wrap(forgeerrors.ErrCodeConfigEnv, "failed to parse environment", err).
			WithSuggestion("Check IDLEFORGE_* environment variables")
	}

	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c Config) Validate() error {
	var problems []string

	if c.TickInterval <= 0 {
		problems = append(problems, "tick_interval must be positive")
	}
	if c.AutosaveInterval <= 0 {
		problems = append(problems, "autosave_interval must be positive")
	}

	switch storage.Backend(c.Storage.Backend) {
	case storage.BackendMemory:
	case storage.BackendFile, storage.BackendSQLite:
		if c.Storage.Path == "" {
			problems = append(problems, fmt.Sprintf("storage.path is required for the %s backend", c.Storage.Backend))
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown storage.backend %q", c.Storage.Backend))
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown log.level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("unknown log.format %q", c.Log.Format))
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		problems = append(problems, "telemetry.sample_rate must be between 0 and 1")
	}

	if len(problems) > 0 {
		return forgeerrors.NewConfigInvalidError(strings.Join(problems, "; "))
	}
	return nil
}

// StoragePath returns the location for the configured backend: the
// directory for file storage, the database file for sqlite.
func (c Config) StoragePath() string {
	if storage.Backend(c.Storage.Backend) == storage.BackendSQLite && filepath.Ext(c.Storage.Path) == "" {
		return filepath.Join(c.Storage.Path, "idleforge.db")
	}
	return c.Storage.Path
}
