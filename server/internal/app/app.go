package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/pgEdge/recordstore/server/internal/config"
	"github.com/pgEdge/recordstore/server/internal/etcd"
	"github.com/pgEdge/recordstore/server/internal/migrate"
	"github.com/pgEdge/recordstore/server/internal/people"
	"github.com/pgEdge/recordstore/server/internal/recordstore"
)

// App owns the embedded etcd server and the migration machinery that runs
// against it.
type App struct {
	i          *do.Injector
	cfg        config.Config
	logger     zerolog.Logger
	etcd       *etcd.EmbeddedEtcd
	client     *clientv3.Client
	registry   *migrate.Registry
	audit      *migrate.AuditStore
	runner     *migrate.Runner
	reconciler *migrate.Reconciler
}

func NewApp(i *do.Injector) (*App, error) {
	cfg, err := do.Invoke[config.Config](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	logger, err := do.Invoke[zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get logger: %w", err)
	}
	embedded, err := do.Invoke[*etcd.EmbeddedEtcd](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded etcd: %w", err)
	}
	registry, err := do.Invoke[*migrate.Registry](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get migration registry: %w", err)
	}
	audit, err := do.Invoke[*migrate.AuditStore](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit store: %w", err)
	}
	runner, err := do.Invoke[*migrate.Runner](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get migration runner: %w", err)
	}
	reconciler, err := do.Invoke[*migrate.Reconciler](i)
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciler: %w", err)
	}

	return &App{
		i:          i,
		cfg:        cfg,
		logger:     logger,
		etcd:       embedded,
		registry:   registry,
		audit:      audit,
		runner:     runner,
		reconciler: reconciler,
	}, nil
}

// Options returns the store options for the registered migrations.
func (a *App) Options() recordstore.Options {
	hooks := []recordstore.OpenFunc{a.reconciler.OnOpen}
	if a.cfg.SeedSampleData {
		hooks = append(hooks, people.OnOpen(a.logger))
	}

	return recordstore.Options{
		Root:            a.cfg.KeyRoot,
		SchemaVersion:   a.registry.TargetVersion(),
		OnVersionChange: a.runner.OnVersionChange,
		OnOpen:          hooks,
	}
}

func (a *App) start(ctx context.Context) error {
	if a.client != nil {
		return nil
	}
	if err := a.etcd.Start(ctx); err != nil {
		return fmt.Errorf("failed to start etcd: %w", err)
	}
	client, err := do.Invoke[*clientv3.Client](a.i)
	if err != nil {
		return fmt.Errorf("failed to get etcd client: %w", err)
	}
	a.client = client

	return nil
}

// Open starts the embedded server and opens the store, running any pending
// migrations and the open hooks.
func (a *App) Open(ctx context.Context) (*recordstore.Store, error) {
	if err := a.start(ctx); err != nil {
		return nil, err
	}
	store, err := recordstore.Open(ctx, a.client, a.logger, a.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return store, nil
}

// Preview returns the writes that opening the store would commit without
// committing them.
func (a *App) Preview(ctx context.Context) ([]recordstore.Change, error) {
	if err := a.start(ctx); err != nil {
		return nil, err
	}
	changes, err := recordstore.Preview(ctx, a.client, a.logger, a.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to preview migrations: %w", err)
	}

	return changes, nil
}

// Status reports the applied state of every registered migration. The store
// must already exist.
func (a *App) Status(ctx context.Context) (*migrate.Status, error) {
	if err := a.start(ctx); err != nil {
		return nil, err
	}
	var status *migrate.Status
	err := recordstore.Inspect(ctx, a.client, a.cfg.KeyRoot, func(view recordstore.View) error {
		var err error
		status, err = migrate.GetStatus(ctx, a.registry, a.audit, view)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get migration status: %w", err)
	}

	return status, nil
}

// Inspect gives fn read-only access to the store without running migrations
// or hooks.
func (a *App) Inspect(ctx context.Context, fn func(view recordstore.View) error) error {
	if err := a.start(ctx); err != nil {
		return err
	}
	return recordstore.Inspect(ctx, a.client, a.cfg.KeyRoot, fn)
}

func (a *App) Shutdown(reason error) error {
	errs := []error{reason}

	if a.etcd != nil {
		a.logger.Debug().Msg("stopping etcd")
		// Shutdown also closes the client.
		errs = append(errs, a.etcd.Shutdown())
		a.client = nil
	}

	return errors.Join(errs...)
}
