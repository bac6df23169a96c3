// Package config loads specforge.yaml and applies SPECFORGE_* environment
// overrides on top of the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/service"
	"github.com/rcliao/specforge/internal/storage"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "specforge.yaml"

const defaultConfigYAML = `# specforge configuration
storage:
  driver: memory        # memory | sqlite | file
  # path defaults to .specforge/specforge.db for sqlite and .specforge for file

log:
  level: info           # debug | info | warn | error
  format: text          # text | json

defaults:
  generate_tasks: true
  auto_assign: true
  validate: true

watch:
  debounce: 300ms
  ignore:
    - "**/.git/**"
    - "**/node_modules/**"
    - "**/*.tmp"

# Replace the built-in roster by listing agents here.
# agents:
#   - id: agent-developer-1
#     name: Full-Stack Developer
#     type: developer
#     capabilities: [api, backend]
#     availability: available
#     performance: {tasks_completed: 0, average_score: 0}
`

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// ResolvedPath fills in the per-driver default location.
func (c StorageConfig) ResolvedPath() string {
	if c.Path != "" {
		return c.Path
	}
	switch c.Driver {
	case storage.DriverSQLite:
		return filepath.Join(".specforge", "specforge.db")
	case storage.DriverFile:
		return ".specforge"
	}
	return ""
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Ignore   []string      `yaml:"ignore"`
}

// Config models specforge.yaml.
type Config struct {
	Storage  StorageConfig        `yaml:"storage"`
	Log      LogConfig            `yaml:"log"`
	Defaults service.ParseOptions `yaml:"defaults"`
	Watch    WatchConfig          `yaml:"watch"`
	Agents   []*domain.Agent      `yaml:"agents,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &cfg); err != nil {
		panic(fmt.Sprintf("config: built-in defaults: %v", err))
	}
	return cfg
}

// DefaultYAML is the commented template written by `specforge init`.
func DefaultYAML() string {
	return defaultConfigYAML
}

// Load reads path over the defaults. An empty path tries DefaultFile and
// silently falls back when it does not exist; an explicit missing path is
// an error. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	applyEnv(&cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("SPECFORGE_STORAGE"); ok && v != "" {
		cfg.Storage.Driver = v
	}
	if v, ok := lookup("SPECFORGE_DB_PATH"); ok && v != "" {
		cfg.Storage.Path = v
	}
	if v, ok := lookup("SPECFORGE_LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup("SPECFORGE_LOG_FORMAT"); ok && v != "" {
		cfg.Log.Format = v
	}
}

// Validate checks the storage driver and any custom roster.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverMemory, storage.DriverSQLite, storage.DriverFile:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}

	seen := make(map[string]bool)
	for i, a := range c.Agents {
		if a == nil || a.ID == "" {
			return fmt.Errorf("config: agent %d has no id", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("config: duplicate agent id %q", a.ID)
		}
		seen[a.ID] = true
		if a.Availability == "" {
			a.Availability = domain.AvailabilityAvailable
		}
	}
	return nil
}

// Roster returns the configured agents, or nil to use the defaults.
func (c Config) Roster() []*domain.Agent {
	if len(c.Agents) == 0 {
		return nil
	}
	return c.Agents
}
