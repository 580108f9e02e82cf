package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"worldsheet/internal/config"
	"worldsheet/internal/implication"
	"worldsheet/internal/linking"
	"worldsheet/internal/store"
	"worldsheet/internal/store/postgres"
	"worldsheet/internal/store/sqlite"
)

// project is everything a command needs once the config has been read.
type project struct {
	cfg      *config.ProjectConfig
	logger   *zap.Logger
	registry *linking.Registry
	rules    []implication.Rule
	db       store.Store
}

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = postgres.New(ctx, cfg.Database.DSN)
	case config.DriverSQLite:
		db, err = sqlite.New(ctx, cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

// loadProject reads the config and tables. The store is opened only when
// withDB is set.
func loadProject(ctx context.Context, withDB bool) (*project, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log.Level, verbose)
	if err != nil {
		return nil, err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	p := &project{cfg: cfg, logger: logger, registry: registry, rules: rules}
	if withDB {
		p.db, err = openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *project) Close(ctx context.Context) {
	if p.db != nil {
		if err := p.db.Close(ctx); err != nil {
			p.logger.Warn("closing store", zap.Error(err))
		}
	}
	_ = p.logger.Sync()
}

func (p *project) links() *linking.Service {
	return linking.NewService(p.registry, p.db, p.logger)
}
