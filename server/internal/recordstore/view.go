package recordstore

import (
	"context"
	"fmt"
	"strings"

	"go.etcd.io/etcd/api/v3/mvccpb"

	"github.com/pgEdge/recordstore/internal/storage"
)

// View is a transactional projection of the store. Reads observe a single
// snapshot of the store. Writes, on views that accept them, are buffered until
// the enclosing transaction commits and are visible to subsequent reads from the
// same view.
type View interface {
	// SchemaVersion is the schema version the records in this view conform
	// to.
	SchemaVersion() int64
	// Get returns the raw record stored under the given collection and ID, or
	// an error wrapping storage.ErrNotFound.
	Get(ctx context.Context, collection, id string) (*mvccpb.KeyValue, error)
	// List returns every raw record in the collection in ascending ID order.
	List(ctx context.Context, collection string) ([]*mvccpb.KeyValue, error)
	Put(ctx context.Context, collection, id string, val storage.Value) error
	Delete(ctx context.Context, collection, id string) error
}

// Transactor runs functions inside read-only or read-write transactions.
type Transactor interface {
	// View runs fn against a read-only snapshot of the store.
	View(ctx context.Context, fn func(view View) error) error
	// Update runs fn against a writable view and commits its writes
	// atomically if fn returns nil. Nothing is committed otherwise.
	Update(ctx context.Context, fn func(view View) error) error
}

// VersionChangeFunc is invoked when the store is opened at a schema version
// that differs from the stored version. oldView reflects the store as it was
// before the upgrade and rejects writes. Writes to newView are committed
// together with the new schema version if the function returns nil.
type VersionChangeFunc func(ctx context.Context, oldView, newView View, oldVersion, newVersion int64) error

// OpenFunc is invoked once every time the store is opened, after any version
// change has been committed.
type OpenFunc func(ctx context.Context, tx Transactor) error

func recordsPrefix(root, collection string) string {
	return storage.Prefix(root, "records", collection)
}

func recordKey(root, collection, id string) string {
	return storage.Key(root, "records", collection, id)
}

func validateKey(collection, id string) error {
	if collection == "" || strings.Contains(collection, "/") {
		return fmt.Errorf("collection %q: %w", collection, ErrInvalidKey)
	}
	if id == "" || strings.Contains(id, "/") {
		return fmt.Errorf("id %q: %w", id, ErrInvalidKey)
	}
	return nil
}

func validateCollection(collection string) error {
	if collection == "" || strings.Contains(collection, "/") {
		return fmt.Errorf("collection %q: %w", collection, ErrInvalidKey)
	}
	return nil
}
