package recordstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pgEdge/recordstore/internal/storage"
)

// StoredSchema records the schema version that the records in a store
// conform to.
type StoredSchema struct {
	storage.StoredValue
	SchemaVersion int64     `json:"version"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func metaKey(root string) string {
	return storage.Key(root, "meta", "schema")
}

type snapshot struct {
	rev    int64
	schema *StoredSchema
}

// readSnapshot returns the current revision together with the stored schema
// metadata. schema is nil when the store has never been initialized.
func readSnapshot(ctx context.Context, client storage.EtcdClient, root string) (*snapshot, error) {
	key := metaKey(root)
	resp, err := client.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema metadata: %w", err)
	}
	snap := &snapshot{rev: resp.Header.Revision}
	if len(resp.Kvs) == 0 {
		return snap, nil
	}
	schema, err := storage.DecodeKV[*StoredSchema](resp.Kvs[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema metadata: %w", err)
	}
	snap.schema = schema

	return snap, nil
}

// readInitialized is readSnapshot for stores that must already exist.
func readInitialized(ctx context.Context, client storage.EtcdClient, root string) (*snapshot, error) {
	snap, err := readSnapshot(ctx, client, root)
	if err != nil {
		return nil, err
	}
	if snap.schema == nil {
		return nil, ErrNotInitialized
	}

	return snap, nil
}

func (s *snapshot) version() int64 {
	if s.schema == nil {
		return 0
	}
	return s.schema.SchemaVersion
}

// schemaOp returns the operation that moves the stored schema to the given
// version. It is guarded on the version of the metadata value read in the
// snapshot.
func (s *snapshot) schemaOp(client storage.EtcdClient, root string, version int64) storage.TxnOperation {
	key := metaKey(root)
	if s.schema == nil {
		return storage.NewCreateOp(client, key, &StoredSchema{
			SchemaVersion: version,
			UpdatedAt:     time.Now(),
		})
	}
	updated := *s.schema
	updated.SchemaVersion = version
	updated.UpdatedAt = time.Now()

	return storage.NewUpdateOp(client, key, &updated)
}

func mapCommitError(err error, conflict error) error {
	if errors.Is(err, storage.ErrOperationConstraintViolated) {
		return fmt.Errorf("%w: %w", conflict, err)
	}
	return fmt.Errorf("%w: %w", ErrCommitFailed, err)
}
