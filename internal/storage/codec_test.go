package storage_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/recordstore/internal/storage"
	"github.com/pgEdge/recordstore/internal/storage/storagetest"
)

func TestCodec(t *testing.T) {
	t.Run("small values are stored as plain json", func(t *testing.T) {
		encoded, err := storage.EncodeValue(&TestValue{SomeField: "small"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"some_field":"small"}`, string(encoded))
	})

	t.Run("large values round trip through compression", func(t *testing.T) {
		large := strings.Repeat("x", 4096)
		encoded, err := storage.EncodeValue(&TestValue{SomeField: large})
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(encoded, []byte{0x1f, 0x8b}))
		assert.Less(t, len(encoded), len(large))

		decoded, err := storage.DecodeValue[*TestValue](encoded)
		require.NoError(t, err)
		assert.Equal(t, large, decoded.SomeField)
	})

	t.Run("compressed values can be read back from etcd", func(t *testing.T) {
		server := storagetest.NewEtcdTestServer(t)
		client := server.Client(t)
		ctx := context.Background()

		large := strings.Repeat("y", 4096)
		require.NoError(t, storage.NewPutOp(client, "large", &TestValue{SomeField: large}).Exec(ctx))

		val, err := storage.NewGetOp[*TestValue](client, "large").Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, large, val.SomeField)
	})
}
