package recordstore

import (
	"context"
	"fmt"

	"github.com/pgEdge/recordstore/internal/storage"
)

// Collection provides typed access to the records in a named collection
// through a View.
type Collection[V storage.Value] struct {
	name  string
	keyFn func(V) string
}

// NewCollection returns a typed accessor for the named collection. keyFn
// returns the ID that a value is stored under.
func NewCollection[V storage.Value](name string, keyFn func(V) string) *Collection[V] {
	return &Collection[V]{
		name:  name,
		keyFn: keyFn,
	}
}

func (c *Collection[V]) Name() string {
	return c.name
}

// All returns every record in the collection in ascending ID order.
func (c *Collection[V]) All(ctx context.Context, view View) ([]V, error) {
	kvs, err := view.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	vals, err := storage.DecodeKVs[V](kvs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s records: %w", c.name, err)
	}

	return vals, nil
}

// Get returns the record with the given ID or an error wrapping
// storage.ErrNotFound.
func (c *Collection[V]) Get(ctx context.Context, view View, id string) (V, error) {
	var zero V
	kv, err := view.Get(ctx, c.name, id)
	if err != nil {
		return zero, err
	}

	return storage.DecodeKV[V](kv)
}

func (c *Collection[V]) Put(ctx context.Context, view View, val V) error {
	return view.Put(ctx, c.name, c.keyFn(val), val)
}

func (c *Collection[V]) Delete(ctx context.Context, view View, id string) error {
	return view.Delete(ctx, c.name, id)
}

func (c *Collection[V]) Count(ctx context.Context, view View) (int, error) {
	kvs, err := view.List(ctx, c.name)
	if err != nil {
		return 0, err
	}
	return len(kvs), nil
}
