package storage

import (
	"context"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
)

type deleteKeyOp struct {
	client  EtcdClient
	key     string
	options []clientv3.OpOption
}

// NewDeleteKeyOp returns an operation that deletes a single value by key.
func NewDeleteKeyOp(client EtcdClient, key string, options ...clientv3.OpOption) DeleteOp {
	return &deleteKeyOp{
		client:  client,
		key:     key,
		options: options,
	}
}

func (o *deleteKeyOp) Ops(_ context.Context) ([]clientv3.Op, error) {
	return []clientv3.Op{clientv3.OpDelete(o.key, o.options...)}, nil
}

func (o *deleteKeyOp) Cmps() []clientv3.Cmp {
	return nil
}

// Exec returns the number of records deleted.
func (o *deleteKeyOp) Exec(ctx context.Context) (int64, error) {
	resp, err := o.client.Delete(ctx, o.key, o.options...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete key %q: %w", o.key, err)
	}

	return resp.Deleted, nil
}
