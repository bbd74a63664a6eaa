package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/recordstore/internal/storage"
	"github.com/pgEdge/recordstore/internal/storage/storagetest"
)

func TestDeleteKeyOp(t *testing.T) {
	server := storagetest.NewEtcdTestServer(t)
	client := server.Client(t)

	t.Run("key exists", func(t *testing.T) {
		ctx := context.Background()
		err := storage.NewCreateOp(client, "foo", &TestValue{SomeField: "foo"}).Exec(ctx)
		require.NoError(t, err)

		deleted, err := storage.NewDeleteKeyOp(client, "foo").Exec(ctx)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = storage.NewGetOp[*TestValue](client, "foo").Exec(ctx)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("key does not exist", func(t *testing.T) {
		ctx := context.Background()
		deleted, err := storage.NewDeleteKeyOp(client, "bar").Exec(ctx)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
	})
}
