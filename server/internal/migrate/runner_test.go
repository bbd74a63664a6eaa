package migrate_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/pgEdge/recordstore/internal/storage/storagetest"
	"github.com/pgEdge/recordstore/server/internal/migrate"
	"github.com/pgEdge/recordstore/server/internal/recordstore"
	"github.com/pgEdge/recordstore/server/internal/testutils"
)

func TestRunner(t *testing.T) {
	server := storagetest.NewEtcdTestServer(t)
	client := server.Client(t)

	t.Run("applies every migration and records each one", func(t *testing.T) {
		root := initStore(t, client)

		var order []string
		registry := newRegistry(t, recorder(&order,
			"migrationOne1000",
			"migrationTwo2000",
			"migrationThree3000",
			"migrationFour4000",
		)...)

		_, err := openStore(t, client, root, registry)
		require.NoError(t, err)

		assert.Equal(t, registry.Names(), order)
		assert.ElementsMatch(t, registry.Names(), auditNames(t, client, root))
		assert.Equal(t, int64(4), schemaVersion(t, client, root))

		for _, r := range auditRecords(t, client, root) {
			assert.False(t, r.Backfilled)
			assert.NotEmpty(t, r.ID)
			assert.NotZero(t, r.CreatedAt)
			assert.NotNil(t, r.RunByVersionInfo)
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		root := initStore(t, client)

		var order []string
		migrations := recorder(&order, "migrationOne1000", "migrationTwo2000")
		_, err := openStore(t, client, root, newRegistry(t, migrations...))
		require.NoError(t, err)
		require.Len(t, order, 2)

		// Bump the version again without adding migrations so that the
		// runner is invoked with nothing pending.
		logger := testutils.Logger(t)
		audit := migrate.NewAuditStore()
		runner := migrate.NewRunner(newRegistry(t, migrations...), audit, logger, nil)
		var invoked bool
		_, err = recordstore.Open(context.Background(), client, logger, recordstore.Options{
			Root:          root,
			SchemaVersion: 3,
			OnVersionChange: func(ctx context.Context, oldView, newView recordstore.View, oldVersion, newVersion int64) error {
				invoked = true
				return runner.OnVersionChange(ctx, oldView, newView, oldVersion, newVersion)
			},
		})
		require.NoError(t, err)

		assert.True(t, invoked)
		assert.Len(t, order, 2)
		assert.Len(t, auditRecords(t, client, root), 2)
	})

	t.Run("unchanged schema version is a no-op", func(t *testing.T) {
		root := initStore(t, client)

		var order []string
		registry := newRegistry(t, recorder(&order, "migrationOne1000")...)
		runner := migrate.NewRunner(registry, migrate.NewAuditStore(), testutils.Logger(t), nil)

		err := recordstore.Inspect(context.Background(), client, root, func(view recordstore.View) error {
			return runner.Run(context.Background(), view, view)
		})
		require.NoError(t, err)

		assert.Empty(t, order)
	})

	t.Run("runs in timestamp order", func(t *testing.T) {
		root := initStore(t, client)

		var order []string
		registry := newRegistry(t, recorder(&order,
			"migrationThird1699822619300",
			"migrationFirst1699822619100",
			"migrationSecond1699822619200",
		)...)

		_, err := openStore(t, client, root, registry)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"migrationFirst1699822619100",
			"migrationSecond1699822619200",
			"migrationThird1699822619300",
		}, order)
	})

	t.Run("runs only unapplied migrations after a skipped upgrade", func(t *testing.T) {
		root := initStore(t, client)

		var order []string
		a, b, c := recorder(&order, "migrationA1000")[0],
			recorder(&order, "migrationB2000")[0],
			recorder(&order, "migrationC3000")[0]

		_, err := openStore(t, client, root, newRegistry(t, a))
		require.NoError(t, err)
		require.Equal(t, []string{"migrationA1000"}, order)

		_, err = openStore(t, client, root, newRegistry(t, c, a, b))
		require.NoError(t, err)

		assert.Equal(t, []string{"migrationA1000", "migrationB2000", "migrationC3000"}, order)
		assert.ElementsMatch(t, []string{"migrationA1000", "migrationB2000", "migrationC3000"}, auditNames(t, client, root))
		assert.Equal(t, int64(3), schemaVersion(t, client, root))
	})

	t.Run("failure aborts the whole pass", func(t *testing.T) {
		root := initStore(t, client)

		var order []string
		bErr := errors.New("migration failed")
		fail := true
		a := recorder(&order, "migrationA1000")[0]
		b := &runnerMockMigration{
			id: "migrationB2000",
			runFunc: func(ctx context.Context, _, newView recordstore.View) error {
				order = append(order, "migrationB2000")
				if fail {
					return bErr
				}
				return nil
			},
		}
		c := recorder(&order, "migrationC3000")[0]
		registry := newRegistry(t, a, b, c)

		_, err := openStore(t, client, root, registry)
		require.ErrorIs(t, err, bErr)

		var execErr *migrate.TransformExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, "migrationB2000", execErr.Name)

		// C is never attempted and nothing is committed.
		assert.Equal(t, []string{"migrationA1000", "migrationB2000"}, order)
		assert.Empty(t, auditRecords(t, client, root))
		assert.Equal(t, int64(0), schemaVersion(t, client, root))

		// A later successful open applies all three.
		fail = false
		order = nil
		_, err = openStore(t, client, root, registry)
		require.NoError(t, err)

		assert.Equal(t, []string{"migrationA1000", "migrationB2000", "migrationC3000"}, order)
		assert.Len(t, auditRecords(t, client, root), 3)
		assert.Equal(t, int64(3), schemaVersion(t, client, root))
	})

	t.Run("failed migration writes are discarded", func(t *testing.T) {
		root := initStore(t, client)

		m := &runnerMockMigration{
			id: "migrationWrite1000",
			runFunc: func(ctx context.Context, _, newView recordstore.View) error {
				if err := newView.Put(ctx, "Thing", "a", &migrate.AuditRecord{Name: "junk"}); err != nil {
					return err
				}
				return errors.New("boom")
			},
		}
		_, err := openStore(t, client, root, newRegistry(t, m))
		require.Error(t, err)

		err = recordstore.Inspect(context.Background(), client, root, func(view recordstore.View) error {
			kvs, err := view.List(context.Background(), "Thing")
			require.NoError(t, err)
			assert.Empty(t, kvs)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("recovers panics", func(t *testing.T) {
		root := initStore(t, client)

		m := &runnerMockMigration{
			id: "migrationPanic1000",
			runFunc: func(context.Context, recordstore.View, recordstore.View) error {
				panic("oops")
			},
		}
		_, err := openStore(t, client, root, newRegistry(t, m))

		var execErr *migrate.TransformExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, "migrationPanic1000", execErr.Name)
		assert.ErrorContains(t, err, "oops")
	})

	t.Run("migrations see the pre-upgrade state through the old view", func(t *testing.T) {
		root := initStore(t, client)

		var oldCount, newCount int
		first := &runnerMockMigration{
			id: "migrationFirst1000",
			runFunc: func(ctx context.Context, _, newView recordstore.View) error {
				return newView.Put(ctx, "Thing", "a", &migrate.AuditRecord{Name: "a"})
			},
		}
		second := &runnerMockMigration{
			id: "migrationSecond2000",
			runFunc: func(ctx context.Context, oldView, newView recordstore.View) error {
				oldKVs, err := oldView.List(ctx, "Thing")
				if err != nil {
					return err
				}
				newKVs, err := newView.List(ctx, "Thing")
				if err != nil {
					return err
				}
				oldCount, newCount = len(oldKVs), len(newKVs)
				return oldView.Put(ctx, "Thing", "b", &migrate.AuditRecord{Name: "b"})
			},
		}
		_, err := openStore(t, client, root, newRegistry(t, first, second))
		assert.ErrorIs(t, err, recordstore.ErrReadOnlyView)

		assert.Equal(t, 0, oldCount)
		assert.Equal(t, 1, newCount)
	})

	t.Run("provides a logger through the context", func(t *testing.T) {
		root := initStore(t, client)

		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		m := &runnerMockMigration{
			id: "migrationLogger1000",
			runFunc: func(ctx context.Context, _, _ recordstore.View) error {
				zerolog.Ctx(ctx).Info().Msg("hello from migration")
				return nil
			},
		}
		runner := migrate.NewRunner(newRegistry(t, m), migrate.NewAuditStore(), logger, nil)
		_, err := recordstore.Open(context.Background(), client, testutils.Logger(t), recordstore.Options{
			Root:            root,
			SchemaVersion:   1,
			OnVersionChange: runner.OnVersionChange,
		})
		require.NoError(t, err)

		assert.Contains(t, buf.String(), `"migration":"migrationLogger1000","message":"hello from migration"`)
	})

	t.Run("records a span per migration", func(t *testing.T) {
		root := initStore(t, client)

		sr := tracetest.NewSpanRecorder()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
		t.Cleanup(func() {
			_ = provider.Shutdown(context.Background())
		})

		ok := &runnerMockMigration{id: "migrationFirst1000"}
		failing := &runnerMockMigration{id: "migrationSecond2000", err: errors.New("boom")}
		runner := migrate.NewRunner(
			newRegistry(t, ok, failing),
			migrate.NewAuditStore(),
			testutils.Logger(t),
			provider.Tracer("migrate_test"),
		)
		_, err := recordstore.Open(context.Background(), client, testutils.Logger(t), recordstore.Options{
			Root:            root,
			SchemaVersion:   2,
			OnVersionChange: runner.OnVersionChange,
		})
		require.Error(t, err)

		spans := sr.Ended()
		require.Len(t, spans, 2)
		assert.Equal(t, "migrate.migrationFirst1000", spans[0].Name())
		assert.Equal(t, codes.Ok, spans[0].Status().Code)
		assert.Equal(t, "migrate.migrationSecond2000", spans[1].Name())
		assert.Equal(t, codes.Error, spans[1].Status().Code)
		assert.Contains(t, spans[1].Status().Description, "boom")
	})
}
