package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"worldsheet/internal/implication"
	"worldsheet/internal/linking"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Tables   TablesConfig   `yaml:"tables"`

	dir string
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// TablesConfig points at link and rule tables that replace the built-in
// ones. Relative paths resolve against the config file's directory.
type TablesConfig struct {
	Links string `yaml:"links"`
	Rules string `yaml:"rules"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	dsn := strings.TrimSpace(cfg.Database.DSN)
	if dsn == "" {
		return fmt.Errorf("database dsn is required")
	}
	switch cfg.Database.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if !strings.HasPrefix(dsn, "sqlite://") {
			return fmt.Errorf("sqlite dsn must use the sqlite:// scheme")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", cfg.Log.Level)
	}

	return nil
}

// Registry returns the link table named by tables.links, or the built-in one.
func (c *ProjectConfig) Registry() (*linking.Registry, error) {
	if c == nil || strings.TrimSpace(c.Tables.Links) == "" {
		return linking.DefaultRegistry()
	}
	return linking.LoadRegistry(c.resolve(c.Tables.Links))
}

// Rules returns the rule table named by tables.rules, or the built-in one.
func (c *ProjectConfig) Rules() ([]implication.Rule, error) {
	if c == nil || strings.TrimSpace(c.Tables.Rules) == "" {
		return implication.DefaultRules()
	}
	return implication.LoadRules(c.resolve(c.Tables.Rules))
}

func (c *ProjectConfig) resolve(path string) string {
	if filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}
