package storage

import (
	"context"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdClient is the subset of the etcd client that storage operations need.
// Both *clientv3.Client and the KV of an embedded server satisfy it.
type EtcdClient interface {
	clientv3.KV
}

// Value is the interface that all stored values must adhere to. Values must be
// JSON-serializable and have a 'version' field that they expose through the
// methods on this interface. The 'version' field should be omitted from the
// JSON representation.
type Value interface {
	Version() int64
	SetVersion(version int64)
}

// StoredValue implements Value. Embed it in record types to track the etcd
// version of the key the record was read from.
type StoredValue struct {
	version int64
}

func (v *StoredValue) Version() int64 {
	return v.version
}

func (v *StoredValue) SetVersion(version int64) {
	v.version = version
}

// TxnOperation is a storage operation that can be used in a transaction.
type TxnOperation interface {
	Ops(ctx context.Context) ([]clientv3.Op, error)
	Cmps() []clientv3.Cmp
}

// Txn is a group of operations that will be executed together in a transaction.
// If any of the operations contains a condition, such as the CreateOp
// operation, and that condition fails, the entire transaction will fail. Each
// operation in the transaction must operate on a unique key.
type Txn interface {
	AddOps(ops ...TxnOperation)
	Commit(ctx context.Context) error
}

// RawGetOp is an operation that returns a single undecoded key value.
type RawGetOp interface {
	Exec(ctx context.Context) (*mvccpb.KeyValue, error)
}

// RawGetMultipleOp is an operation that returns multiple undecoded key values.
type RawGetMultipleOp interface {
	Exec(ctx context.Context) ([]*mvccpb.KeyValue, error)
}

// GetOp is an operation that returns a single value.
type GetOp[V Value] interface {
	Exec(ctx context.Context) (V, error)
}

// GetMultipleOp is an operation that returns multiple values.
type GetMultipleOp[V Value] interface {
	Exec(ctx context.Context) ([]V, error)
}

// PutOp is an operation that puts a key-value pair into storage.
type PutOp[V Value] interface {
	TxnOperation
	Exec(ctx context.Context) error
}

// DeleteOp is an operation that deletes one or more values from storage, and
// returns the number of values deleted.
type DeleteOp interface {
	TxnOperation
	Exec(ctx context.Context) (int64, error)
}
