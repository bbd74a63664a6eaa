package recordstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/pgEdge/recordstore/internal/storage"
)

var _ Transactor = (*Store)(nil)

// Options control how a store is opened.
type Options struct {
	// Root is the etcd key prefix that all of the store's keys live under.
	Root string
	// SchemaVersion is the target schema version.
	SchemaVersion int64
	// OnVersionChange is invoked when the stored schema version is behind
	// SchemaVersion.
	OnVersionChange VersionChangeFunc
	// OnOpen hooks are invoked in order after any version change has been
	// committed.
	OnOpen []OpenFunc
}

func (o Options) validate() error {
	var errs []error
	if o.Root == "" {
		errs = append(errs, errors.New("root is required"))
	}
	if o.SchemaVersion < 0 {
		errs = append(errs, fmt.Errorf("schema version must be non-negative, got %d", o.SchemaVersion))
	}
	return errors.Join(errs...)
}

// Store is an open record store.
type Store struct {
	client  storage.EtcdClient
	logger  zerolog.Logger
	root    string
	version int64
}

// Open opens the store under opts.Root, initializing it if it does not exist
// and upgrading it if its schema version is behind opts.SchemaVersion. The
// version change, if any, is committed in a single transaction. Open hooks run
// afterwards and any hook error fails the open.
func Open(ctx context.Context, client storage.EtcdClient, logger zerolog.Logger, opts Options) (*Store, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	store := newStore(client, logger, opts)
	snap, err := readSnapshot(ctx, client, opts.Root)
	if err != nil {
		return nil, err
	}
	newView, err := store.changeVersion(ctx, snap, opts)
	if err != nil {
		return nil, err
	}
	if newView != nil {
		txn := storage.NewTxn(client, newView.ops()...)
		txn.AddOps(snap.schemaOp(client, opts.Root, opts.SchemaVersion))
		if err := txn.Commit(ctx); err != nil {
			return nil, mapCommitError(err, ErrConcurrentOpen)
		}
		store.logger.Info().
			Int64("old_version", snap.version()).
			Int64("new_version", opts.SchemaVersion).
			Int("writes", len(newView.order)).
			Msg("committed schema version change")
	}

	for _, hook := range opts.OnOpen {
		if err := hook(ctx, store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

func newStore(client storage.EtcdClient, logger zerolog.Logger, opts Options) *Store {
	return &Store{
		client: client,
		logger: logger.With().
			Str("component", "recordstore").
			Str("root", opts.Root).
			Logger(),
		root:    opts.Root,
		version: opts.SchemaVersion,
	}
}

// changeVersion runs the version change hook, if needed, and returns the view
// containing its writes. It returns nil if the stored schema is already at the
// target version.
func (s *Store) changeVersion(ctx context.Context, snap *snapshot, opts Options) (*writeView, error) {
	stored := snap.version()
	target := opts.SchemaVersion
	switch {
	case snap.schema == nil:
		s.logger.Info().
			Int64("version", target).
			Msg("initializing new store at target schema version")
		return newWriteView(s.client, s.root, snap.rev, target), nil
	case stored > target:
		return nil, fmt.Errorf("%w: stored=%d, target=%d", ErrSchemaVersionAhead, stored, target)
	case stored == target:
		s.logger.Debug().
			Int64("version", stored).
			Msg("schema version is current")
		return nil, nil
	}

	s.logger.Info().
		Int64("old_version", stored).
		Int64("new_version", target).
		Msg("schema version changed")

	oldView := newReadView(s.client, s.root, snap.rev, stored)
	newView := newWriteView(s.client, s.root, snap.rev, target)
	if opts.OnVersionChange != nil {
		if err := opts.OnVersionChange(ctx, oldView, newView, stored, target); err != nil {
			return nil, fmt.Errorf("failed to change schema version from %d to %d: %w", stored, target, err)
		}
	}

	return newView, nil
}

// Root returns the key prefix of the store.
func (s *Store) Root() string {
	return s.root
}

// SchemaVersion returns the schema version the store was opened at.
func (s *Store) SchemaVersion() int64 {
	return s.version
}

func (s *Store) View(ctx context.Context, fn func(view View) error) error {
	return inspect(ctx, s.client, s.root, fn)
}

func (s *Store) Update(ctx context.Context, fn func(view View) error) error {
	snap, err := readInitialized(ctx, s.client, s.root)
	if err != nil {
		return err
	}
	view := newWriteView(s.client, s.root, snap.rev, snap.version())
	if err := fn(view); err != nil {
		return err
	}
	if len(view.order) == 0 {
		return nil
	}

	txn := storage.NewTxn(s.client, view.ops()...)
	// Fail if the schema changed underneath us.
	txn.AddOps(&guardOnlyOp{key: metaKey(s.root), rev: snap.rev})
	if err := txn.Commit(ctx); err != nil {
		return mapCommitError(err, ErrConflict)
	}

	return nil
}

// Inspect runs fn against a read-only snapshot of an existing store without
// opening it. No hooks are invoked.
func Inspect(ctx context.Context, client storage.EtcdClient, root string, fn func(view View) error) error {
	return inspect(ctx, client, root, fn)
}

func inspect(ctx context.Context, client storage.EtcdClient, root string, fn func(view View) error) error {
	snap, err := readInitialized(ctx, client, root)
	if err != nil {
		return err
	}
	return fn(newReadView(client, root, snap.rev, snap.version()))
}

// guardOnlyOp asserts that a key has not been modified since a revision
// without writing to it.
type guardOnlyOp struct {
	key string
	rev int64
}

func (o *guardOnlyOp) Ops(_ context.Context) ([]clientv3.Op, error) {
	return nil, nil
}

func (o *guardOnlyOp) Cmps() []clientv3.Cmp {
	return []clientv3.Cmp{
		clientv3.Compare(clientv3.ModRevision(o.key), "<", o.rev+1),
	}
}
