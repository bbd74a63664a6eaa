package recordstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/pgEdge/recordstore/internal/storage"
)

var _ View = (*writeView)(nil)

type pendingWrite struct {
	collection string
	id         string
	key        string
	encoded    []byte
	deleted    bool
	// base is the stored key value at the snapshot revision, or nil if the key
	// did not exist.
	base *mvccpb.KeyValue
}

// writeView buffers writes over a snapshot of the store. Reads observe the
// snapshot with the buffered writes applied.
type writeView struct {
	read   *readView
	writes map[string]*pendingWrite
	order  []string
}

func newWriteView(client storage.EtcdClient, root string, rev, version int64) *writeView {
	return &writeView{
		read:   newReadView(client, root, rev, version),
		writes: map[string]*pendingWrite{},
	}
}

func (v *writeView) SchemaVersion() int64 {
	return v.read.version
}

func (v *writeView) Get(ctx context.Context, collection, id string) (*mvccpb.KeyValue, error) {
	if err := validateKey(collection, id); err != nil {
		return nil, err
	}
	key := recordKey(v.read.root, collection, id)
	if w, ok := v.writes[key]; ok {
		if w.deleted {
			return nil, fmt.Errorf("%q: %w", key, storage.ErrNotFound)
		}
		return w.keyValue(), nil
	}

	return v.read.Get(ctx, collection, id)
}

func (v *writeView) List(ctx context.Context, collection string) ([]*mvccpb.KeyValue, error) {
	kvs, err := v.read.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	merged := make([]*mvccpb.KeyValue, 0, len(kvs))
	seen := map[string]bool{}
	for _, kv := range kvs {
		key := string(kv.Key)
		seen[key] = true
		w, ok := v.writes[key]
		switch {
		case !ok:
			merged = append(merged, kv)
		case !w.deleted:
			merged = append(merged, w.keyValue())
		}
	}
	for _, key := range v.order {
		w := v.writes[key]
		if w.collection != collection || w.deleted || seen[key] {
			continue
		}
		merged = append(merged, w.keyValue())
	}
	slices.SortFunc(merged, func(a, b *mvccpb.KeyValue) int {
		return strings.Compare(string(a.Key), string(b.Key))
	})

	return merged, nil
}

func (v *writeView) Put(ctx context.Context, collection, id string, val storage.Value) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	encoded, err := storage.EncodeValue(val)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	w, err := v.pending(ctx, collection, id)
	if err != nil {
		return err
	}
	w.encoded = encoded
	w.deleted = false

	return nil
}

func (v *writeView) Delete(ctx context.Context, collection, id string) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	w, err := v.pending(ctx, collection, id)
	if err != nil {
		return err
	}
	w.encoded = nil
	w.deleted = true

	return nil
}

func (v *writeView) pending(ctx context.Context, collection, id string) (*pendingWrite, error) {
	key := recordKey(v.read.root, collection, id)
	if w, ok := v.writes[key]; ok {
		return w, nil
	}
	base, err := v.read.Get(ctx, collection, id)
	if errors.Is(err, storage.ErrNotFound) {
		base = nil
	} else if err != nil {
		return nil, err
	}
	w := &pendingWrite{
		collection: collection,
		id:         id,
		key:        key,
		base:       base,
	}
	v.writes[key] = w
	v.order = append(v.order, key)

	return w, nil
}

// ops returns one operation per buffered write, in the order the keys were
// first written. Each operation fails the transaction if its key was modified
// after the snapshot revision.
func (v *writeView) ops() []storage.TxnOperation {
	ops := make([]storage.TxnOperation, 0, len(v.order))
	for _, key := range v.order {
		w := v.writes[key]
		var op storage.TxnOperation
		if w.deleted {
			op = storage.NewDeleteKeyOp(v.read.client, key)
		} else {
			op = storage.NewRawPutOp(v.read.client, key, w.encoded)
		}
		ops = append(ops, &guardedOp{
			TxnOperation: op,
			key:          key,
			rev:          v.read.rev,
		})
	}

	return ops
}

func (w *pendingWrite) keyValue() *mvccpb.KeyValue {
	kv := &mvccpb.KeyValue{
		Key:     []byte(w.key),
		Value:   w.encoded,
		Version: 1,
	}
	if w.base != nil {
		kv.CreateRevision = w.base.CreateRevision
		kv.Version = w.base.Version + 1
	}

	return kv
}

// guardedOp adds a modification revision constraint to an operation.
type guardedOp struct {
	storage.TxnOperation
	key string
	rev int64
}

func (o *guardedOp) Cmps() []clientv3.Cmp {
	return append(o.TxnOperation.Cmps(),
		clientv3.Compare(clientv3.ModRevision(o.key), "<", o.rev+1),
	)
}
