package migrate_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/pgEdge/recordstore/server/internal/migrate"
	"github.com/pgEdge/recordstore/server/internal/recordstore"
	"github.com/pgEdge/recordstore/server/internal/testutils"
)

type runnerMockMigration struct {
	id      string
	err     error
	runFunc func(ctx context.Context, oldView, newView recordstore.View) error
}

func (m *runnerMockMigration) Identifier() string {
	return m.id
}

func (m *runnerMockMigration) Run(ctx context.Context, oldView, newView recordstore.View) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, oldView, newView)
	}
	return m.err
}

// recorder returns migrations that append their identifiers to order when
// they run.
func recorder(order *[]string, ids ...string) []migrate.Migration {
	out := make([]migrate.Migration, len(ids))
	for i, id := range ids {
		out[i] = &runnerMockMigration{
			id: id,
			runFunc: func(context.Context, recordstore.View, recordstore.View) error {
				*order = append(*order, id)
				return nil
			},
		}
	}
	return out
}

func newRegistry(t testing.TB, migrations ...migrate.Migration) *migrate.Registry {
	t.Helper()

	registry, err := migrate.NewRegistry(migrations...)
	require.NoError(t, err)

	return registry
}

// openStore opens the store with the migration runner and reconciler wired in
// the same way that the application does.
func openStore(t testing.TB, client *clientv3.Client, root string, registry *migrate.Registry) (*recordstore.Store, error) {
	t.Helper()

	logger := testutils.Logger(t)
	audit := migrate.NewAuditStore()
	runner := migrate.NewRunner(registry, audit, logger, nil)
	reconciler := migrate.NewReconciler(registry, audit, logger)

	return recordstore.Open(context.Background(), client, logger, recordstore.Options{
		Root:            root,
		SchemaVersion:   registry.TargetVersion(),
		OnVersionChange: runner.OnVersionChange,
		OnOpen:          []recordstore.OpenFunc{reconciler.OnOpen},
	})
}

// initStore creates an empty store at schema version 0.
func initStore(t testing.TB, client *clientv3.Client) string {
	t.Helper()

	root := uuid.NewString()
	_, err := openStore(t, client, root, newRegistry(t))
	require.NoError(t, err)

	return root
}

func auditRecords(t testing.TB, client *clientv3.Client, root string) []*migrate.AuditRecord {
	t.Helper()

	var records []*migrate.AuditRecord
	err := recordstore.Inspect(context.Background(), client, root, func(view recordstore.View) error {
		var err error
		records, err = migrate.NewAuditStore().All(context.Background(), view)
		return err
	})
	require.NoError(t, err)

	return records
}

func auditNames(t testing.TB, client *clientv3.Client, root string) []string {
	t.Helper()

	var names []string
	for _, r := range auditRecords(t, client, root) {
		names = append(names, r.Name)
	}
	return names
}

func schemaVersion(t testing.TB, client *clientv3.Client, root string) int64 {
	t.Helper()

	var version int64
	err := recordstore.Inspect(context.Background(), client, root, func(view recordstore.View) error {
		version = view.SchemaVersion()
		return nil
	})
	require.NoError(t, err)

	return version
}
