package migrate

import (
	"github.com/rs/zerolog"
	"github.com/samber/do"
)

// Provide registers migration dependencies with the injector.
func Provide(i *do.Injector) {
	provideRegistry(i)
	provideAuditStore(i)
	provideRunner(i)
	provideReconciler(i)
}

func provideRegistry(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*Registry, error) {
		return AllMigrations()
	})
}

func provideAuditStore(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*AuditStore, error) {
		return NewAuditStore(), nil
	})
}

func provideRunner(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Runner, error) {
		registry, err := do.Invoke[*Registry](i)
		if err != nil {
			return nil, err
		}
		audit, err := do.Invoke[*AuditStore](i)
		if err != nil {
			return nil, err
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, err
		}
		return NewRunner(registry, audit, logger, nil), nil
	})
}

func provideReconciler(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Reconciler, error) {
		registry, err := do.Invoke[*Registry](i)
		if err != nil {
			return nil, err
		}
		audit, err := do.Invoke[*AuditStore](i)
		if err != nil {
			return nil, err
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, err
		}
		return NewReconciler(registry, audit, logger), nil
	})
}
