package recordstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/pgEdge/recordstore/internal/storage"
	"github.com/pgEdge/recordstore/server/internal/recordstore"
	"github.com/pgEdge/recordstore/server/internal/testutils"
)

type item struct {
	storage.StoredValue
	ID    string `json:"id"`
	Value string `json:"value"`
}

var items = recordstore.NewCollection("Item", func(i *item) string {
	return i.ID
})

func openStore(t testing.TB, client *clientv3.Client, opts recordstore.Options) *recordstore.Store {
	t.Helper()

	if opts.Root == "" {
		opts.Root = uuid.NewString()
	}
	store, err := recordstore.Open(context.Background(), client, testutils.Logger(t), opts)
	require.NoError(t, err)

	return store
}

func putItems(t testing.TB, store *recordstore.Store, vals ...*item) {
	t.Helper()

	err := store.Update(context.Background(), func(view recordstore.View) error {
		for _, val := range vals {
			if err := items.Put(context.Background(), view, val); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func allItems(t testing.TB, store *recordstore.Store) []*item {
	t.Helper()

	var out []*item
	err := store.View(context.Background(), func(view recordstore.View) error {
		var err error
		out, err = items.All(context.Background(), view)
		return err
	})
	require.NoError(t, err)

	return out
}

func itemValues(vals []*item) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.ID + "=" + v.Value
	}
	return out
}
