// Package app assembles the jira service: it connects the configured
// backends and mounts the project API on the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/HarshaM0211/jira-software/internal/project"
	"github.com/HarshaM0211/jira-software/pkg/config"
	"github.com/HarshaM0211/jira-software/pkg/health"
	"github.com/HarshaM0211/jira-software/pkg/migrate"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/server"
	"github.com/HarshaM0211/jira-software/pkg/store"
)

// Name is the service and binary name.
const Name = "jira-software"

// Serve builds the application and runs it until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	a, err := Build(cfg, log)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

// Build connects the backend and cache and returns the assembled App. The
// connections are closed by the App's shutdown hooks.
//
// Cosa fa: apre store e cache, registra health check, hook di migrazione e le rotte /projects.
// Cosa NON fa: non avvia il server; per quello c'è App.Run.
// Esempio minimo: a, err := app.Build(cfg, log); err = a.Run(ctx)
func Build(cfg *config.Config, log logger.Logger) (*server.App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	backend, err := store.NewRepositoryBackend(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect %s backend: %w", cfg.Database.Type, err)
	}
	cache, err := store.NewCache(cfg.Cache, log)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("connect cache: %w", err)
	}

	var startup, shutdown []server.LifecycleHook
	if cfg.Migrations.AutoApply && backend.SQL != nil {
		startup = append(startup, server.LifecycleHook{Name: "migrate", Fn: func(ctx context.Context) error {
			applied, err := migrate.ApplyPending(ctx, backend.SQL.DB(), backend.SQL.Driver(), project.MigrationSource,
				migrate.WithTable(cfg.Migrations.Table))
			if err != nil {
				return err
			}
			log.Info("migrations applied", "count", applied)
			return nil
		}})
	}
	if cache != nil {
		shutdown = append(shutdown, server.LifecycleHook{Name: "close-cache", Fn: func(context.Context) error {
			return cache.Close()
		}})
	}
	shutdown = append(shutdown, server.LifecycleHook{Name: "close-store", Fn: func(context.Context) error {
		return backend.Close()
	}})

	closeAll := func() {
		if cache != nil {
			_ = cache.Close()
		}
		_ = backend.Close()
	}

	a, err := server.NewApp(server.Options{
		Config:        cfg,
		Logger:        log,
		StartupHooks:  startup,
		ShutdownHooks: shutdown,
	})
	if err != nil {
		closeAll()
		return nil, err
	}

	backendType := backend.Type
	if backendType == "" {
		backendType = config.DatabaseTypeMemory
	}
	a.Health.Register(health.NewStoreChecker(backendType, backend))

	deps := project.Deps{
		Backend:     backend,
		CacheTTL:    cfg.Cache.TTL,
		MaxPageSize: cfg.Pagination.MaxSize,
		Logger:      log,
	}
	if cache != nil {
		deps.Cache = cache
		a.Health.Register(health.NewCacheChecker(cache))
	}

	svc, err := project.NewService(deps)
	if err != nil {
		closeAll()
		return nil, err
	}
	project.Mount(a.Router, svc, cfg.Pagination, log)
	return a, nil
}

// Migrate runs "up", "down" or "status" against the configured SQL backend
// with the embedded project scripts.
func Migrate(ctx context.Context, cfg *config.Config, log logger.Logger, subcommand string, steps int) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if !cfg.Database.IsSQL() {
		return fmt.Errorf("migrations need a SQL backend, database.type is %q", cfg.Database.Type)
	}
	cmd, err := migrate.NewCommand(subcommand, steps)
	if err != nil {
		return err
	}
	if log == nil {
		log = logger.NewNop()
	}

	backend, err := store.NewRepositoryBackend(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect %s backend: %w", cfg.Database.Type, err)
	}
	defer backend.Close()

	serviceName := cfg.Service.Name
	if serviceName == "" {
		serviceName = Name
	}
	return migrate.RunWithDB(ctx, backend.SQL.DB(), backend.SQL.Driver(), project.MigrationSource, cmd,
		migrate.Options{ServiceName: serviceName, Logger: log},
		migrate.WithTable(cfg.Migrations.Table))
}
