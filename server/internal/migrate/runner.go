package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pgEdge/recordstore/server/internal/recordstore"
	"github.com/pgEdge/recordstore/server/internal/version"
)

const tracerName = "github.com/pgEdge/recordstore/server/internal/migrate"

// Runner applies pending migrations during a schema version change.
type Runner struct {
	registry *Registry
	audit    *AuditStore
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewRunner creates a new migration runner. If tracer is nil, the global
// tracer provider is used.
func NewRunner(registry *Registry, audit *AuditStore, logger zerolog.Logger, tracer trace.Tracer) *Runner {
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return &Runner{
		registry: registry,
		audit:    audit,
		logger: logger.With().
			Str("component", "migration_runner").
			Logger(),
		tracer: tracer,
	}
}

// OnVersionChange runs the migrations. It satisfies
// recordstore.VersionChangeFunc.
func (r *Runner) OnVersionChange(ctx context.Context, oldView, newView recordstore.View, oldVersion, newVersion int64) error {
	r.logger.Info().
		Int64("old_version", oldVersion).
		Int64("new_version", newVersion).
		Msg("migrating store")

	return r.Run(ctx, oldView, newView)
}

// Run applies, in registry order, every migration that has no audit record in
// oldView and writes an audit record to newView for each one that succeeds.
// It stops at the first failure.
func (r *Runner) Run(ctx context.Context, oldView, newView recordstore.View) error {
	// The store shouldn't invoke us in this case, but don't rely on it.
	if oldView.SchemaVersion() == newView.SchemaVersion() {
		r.logger.Info().
			Int64("version", oldView.SchemaVersion()).
			Msg("schema version is unchanged, skipping migrations")
		return nil
	}

	applied, err := r.audit.AppliedNames(ctx, oldView)
	if err != nil {
		return err
	}

	var pending []Migration
	for _, m := range r.registry.List() {
		if !applied.Has(m.Identifier()) {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		r.logger.Info().Msg("no migrations to run")
		return nil
	}

	// failure to get version info is non-fatal
	versionInfo, _ := version.GetInfo()

	for _, m := range pending {
		if err := r.runMigration(ctx, m, oldView, newView); err != nil {
			r.logger.Err(err).
				Str("migration", m.Identifier()).
				Msg("run migrations error, stopping migrations")
			return err
		}

		record := newAuditRecord(m.Identifier(), false, versionInfo)
		if err := r.audit.Create(ctx, newView, record); err != nil {
			return err
		}
	}

	r.logger.Info().
		Int("count", len(pending)).
		Msg("applied migrations")

	return nil
}

func (r *Runner) runMigration(ctx context.Context, m Migration, oldView, newView recordstore.View) (err error) {
	name := m.Identifier()
	logger := r.logger.With().
		Str("migration", name).
		Logger()

	ctx, span := r.tracer.Start(ctx, "migrate."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("migration.name", name),
			attribute.Int64("migration.old_version", oldView.SchemaVersion()),
			attribute.Int64("migration.new_version", newView.SchemaVersion()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	defer func() {
		if p := recover(); p != nil {
			err = &TransformExecutionError{
				Name: name,
				Err:  fmt.Errorf("panic: %v", p),
			}
		}
	}()

	logger.Info().Msg("running migration")
	start := time.Now()

	if err := m.Run(logger.WithContext(ctx), oldView, newView); err != nil {
		return &TransformExecutionError{Name: name, Err: err}
	}

	logger.Info().
		Dur("duration", time.Since(start)).
		Msg("migration complete")

	return nil
}
