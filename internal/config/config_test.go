package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Database.Driver != DriverSQLite {
			t.Fatalf("expected sqlite driver, got %q", cfg.Database.Driver)
		}
		if cfg.Log.Level != "debug" {
			t.Fatalf("expected debug level, got %q", cfg.Log.Level)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://worlds.db\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Database.Driver != DriverSQLite || cfg.Log.Level != "info" {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("driver is case-insensitive", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  driver: Postgres\n  dsn: postgres://localhost/worlds\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Database.Driver != DriverPostgres {
			t.Fatalf("expected postgres driver, got %q", cfg.Database.Driver)
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\ndatabase:\n  dsn: sqlite://worlds.db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\ndatabase:\n  dsn: sqlite://worlds.db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing dsn", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  driver: postgres\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("sqlite dsn without scheme", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  driver: sqlite\n  dsn: ./worlds.db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  driver: mysql\n  dsn: mysql://localhost\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown log level", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://worlds.db\nlog:\n  level: chatty\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestTables(t *testing.T) {
	t.Run("built-in tables", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("loading config: %v", err)
		}
		registry, err := cfg.Registry()
		if err != nil {
			t.Fatalf("loading registry: %v", err)
		}
		if len(registry.ConfigsFor("species-biology")) == 0 {
			t.Fatalf("expected built-in species-biology slots")
		}
		rules, err := cfg.Rules()
		if err != nil {
			t.Fatalf("loading rules: %v", err)
		}
		if len(rules) == 0 {
			t.Fatalf("expected built-in rules")
		}
	})

	t.Run("override paths resolve against config dir", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "with_tables.yaml"))
		if err != nil {
			t.Fatalf("loading config: %v", err)
		}
		registry, err := cfg.Registry()
		if err != nil {
			t.Fatalf("loading registry: %v", err)
		}
		slots := registry.ConfigsFor("species-biology")
		if len(slots) != 1 || slots[0].Key != "homeworld" {
			t.Fatalf("unexpected override slots: %+v", slots)
		}
		if _, err := cfg.Rules(); err == nil {
			t.Fatalf("expected error for missing rules file")
		}
	})
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "worldsheet.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
