package storage

import (
	"context"
	"fmt"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type rawGetOp struct {
	client  EtcdClient
	key     string
	options []clientv3.OpOption
}

// NewRawGetOp returns an operation that returns a single undecoded key value.
// Pass clientv3.WithRev to read from a past revision.
func NewRawGetOp(client EtcdClient, key string, options ...clientv3.OpOption) RawGetOp {
	return &rawGetOp{
		client:  client,
		key:     key,
		options: options,
	}
}

func (o *rawGetOp) Exec(ctx context.Context) (*mvccpb.KeyValue, error) {
	resp, err := o.client.Get(ctx, o.key, o.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", o.key, err)
	}
	if len(resp.Kvs) < 1 {
		return nil, fmt.Errorf("%q: %w", o.key, ErrNotFound)
	}

	return resp.Kvs[0], nil
}

type rawGetPrefixOp struct {
	client  EtcdClient
	prefix  string
	options []clientv3.OpOption
}

// NewRawGetPrefixOp returns an operation that returns undecoded key values by
// prefix in ascending key order.
func NewRawGetPrefixOp(client EtcdClient, prefix string, options ...clientv3.OpOption) RawGetMultipleOp {
	return &rawGetPrefixOp{
		client:  client,
		prefix:  ensureTrailingSlash(prefix),
		options: options,
	}
}

func (o *rawGetPrefixOp) Exec(ctx context.Context) ([]*mvccpb.KeyValue, error) {
	options := []clientv3.OpOption{
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend),
	}
	options = append(options, o.options...)
	resp, err := o.client.Get(ctx, o.prefix, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to get prefix %q: %w", o.prefix, err)
	}

	return resp.Kvs, nil
}

type getOp[V Value] struct {
	raw RawGetOp
}

// NewGetOp returns an operation that returns a single value by key.
func NewGetOp[V Value](client EtcdClient, key string, options ...clientv3.OpOption) GetOp[V] {
	return &getOp[V]{
		raw: NewRawGetOp(client, key, options...),
	}
}

func (o *getOp[V]) Exec(ctx context.Context) (V, error) {
	var zero V
	kv, err := o.raw.Exec(ctx)
	if err != nil {
		return zero, err
	}

	return DecodeKV[V](kv)
}

type getPrefixOp[V Value] struct {
	raw RawGetMultipleOp
}

// NewGetPrefixOp returns an operation that returns multiple values by prefix.
func NewGetPrefixOp[V Value](client EtcdClient, prefix string, options ...clientv3.OpOption) GetMultipleOp[V] {
	return &getPrefixOp[V]{
		raw: NewRawGetPrefixOp(client, prefix, options...),
	}
}

func (o *getPrefixOp[V]) Exec(ctx context.Context) ([]V, error) {
	kvs, err := o.raw.Exec(ctx)
	if err != nil {
		return nil, err
	}

	return DecodeKVs[V](kvs)
}

// DecodeGetResponse is a helper function to extract typed values from a
// clientv3.GetResponse
func DecodeGetResponse[V Value](resp *clientv3.GetResponse) ([]V, error) {
	return DecodeKVs[V](resp.Kvs)
}
