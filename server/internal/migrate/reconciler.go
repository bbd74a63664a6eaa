package migrate

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pgEdge/recordstore/server/internal/ds"
	"github.com/pgEdge/recordstore/server/internal/recordstore"
	"github.com/pgEdge/recordstore/server/internal/version"
)

// Reconciler backfills audit records for migrations that never needed to run.
// A new store is created directly at the latest schema version, so the Runner
// never sees its migrations. Without audit records, those migrations would be
// treated as pending after the next upgrade and run against data that was
// never in the old shape.
type Reconciler struct {
	registry *Registry
	audit    *AuditStore
	logger   zerolog.Logger
}

func NewReconciler(registry *Registry, audit *AuditStore, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		registry: registry,
		audit:    audit,
		logger: logger.With().
			Str("component", "migration_reconciler").
			Logger(),
	}
}

// OnOpen reconciles the store in a single write transaction. It satisfies
// recordstore.OpenFunc.
func (r *Reconciler) OnOpen(ctx context.Context, tx recordstore.Transactor) error {
	var missing []string
	err := tx.Update(ctx, func(view recordstore.View) error {
		var err error
		missing, err = r.reconcile(ctx, view)
		return err
	})
	var writeErr *ReconciliationWriteError
	switch {
	case errors.As(err, &writeErr):
		return err
	case err != nil && len(missing) > 0:
		return &ReconciliationWriteError{Missing: missing, Err: err}
	case err != nil:
		return err
	}

	return nil
}

// Reconcile writes an audit record to view for every registered migration that
// does not have one. No migrations are run.
func (r *Reconciler) Reconcile(ctx context.Context, view recordstore.View) error {
	_, err := r.reconcile(ctx, view)
	return err
}

func (r *Reconciler) reconcile(ctx context.Context, view recordstore.View) ([]string, error) {
	count, err := r.audit.Count(ctx, view)
	if err != nil {
		return nil, err
	}
	if count == r.registry.Len() {
		r.logger.Debug().
			Int("count", count).
			Msg("migration records already exist, skipping reconciliation")
		return nil, nil
	}

	applied, err := r.audit.AppliedNames(ctx, view)
	if err != nil {
		return nil, err
	}
	registered := ds.NewSet(r.registry.Names()...)
	if orphans := applied.Difference(registered); orphans.Size() > 0 {
		r.logger.Warn().
			Strs("migrations", orphans.ToSortedSlice(strings.Compare)).
			Msg("found records for migrations that are no longer registered")
	}

	var missing []string
	for _, name := range r.registry.Names() {
		if !applied.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	r.logger.Info().
		Strs("migrations", missing).
		Msg("backfilling migration records")

	// failure to get version info is non-fatal
	versionInfo, _ := version.GetInfo()
	for _, name := range missing {
		record := newAuditRecord(name, true, versionInfo)
		if err := r.audit.Create(ctx, view, record); err != nil {
			return missing, &ReconciliationWriteError{Missing: missing, Err: err}
		}
	}

	return missing, nil
}
