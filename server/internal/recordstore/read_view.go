package recordstore

import (
	"context"
	"fmt"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/pgEdge/recordstore/internal/storage"
)

var _ View = (*readView)(nil)

// readView reads the store as of a fixed etcd revision.
type readView struct {
	client  storage.EtcdClient
	root    string
	rev     int64
	version int64
}

func newReadView(client storage.EtcdClient, root string, rev, version int64) *readView {
	return &readView{
		client:  client,
		root:    root,
		rev:     rev,
		version: version,
	}
}

func (v *readView) SchemaVersion() int64 {
	return v.version
}

func (v *readView) Get(ctx context.Context, collection, id string) (*mvccpb.KeyValue, error) {
	if err := validateKey(collection, id); err != nil {
		return nil, err
	}
	key := recordKey(v.root, collection, id)
	return storage.NewRawGetOp(v.client, key, clientv3.WithRev(v.rev)).Exec(ctx)
}

func (v *readView) List(ctx context.Context, collection string) ([]*mvccpb.KeyValue, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	prefix := recordsPrefix(v.root, collection)
	return storage.NewRawGetPrefixOp(v.client, prefix, clientv3.WithRev(v.rev)).Exec(ctx)
}

func (v *readView) Put(_ context.Context, collection, id string, _ storage.Value) error {
	return fmt.Errorf("put %s/%s: %w", collection, id, ErrReadOnlyView)
}

func (v *readView) Delete(_ context.Context, collection, id string) error {
	return fmt.Errorf("delete %s/%s: %w", collection, id, ErrReadOnlyView)
}
