package storage

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"go.etcd.io/etcd/api/v3/mvccpb"
)

const compressionThreshold = 2048 // 2KiB

// gzip streams always start with these two bytes, which can never begin a JSON
// document.
var gzipMagic = []byte{0x1f, 0x8b}

// EncodeValue serializes a value to JSON, compressing it when it's larger than
// the compression threshold.
func EncodeValue(val any) ([]byte, error) {
	raw, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	return compress(raw)
}

// DecodeValue is the inverse of EncodeValue.
func DecodeValue[V any](data []byte) (V, error) {
	var out V
	raw, err := decompress(data)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeKVs is a helper function to extract typed values from raw key values.
func DecodeKVs[V Value](kvs []*mvccpb.KeyValue) ([]V, error) {
	vals := make([]V, len(kvs))
	for idx, kv := range kvs {
		v, err := DecodeKV[V](kv)
		if err != nil {
			return nil, err
		}
		vals[idx] = v
	}

	return vals, nil
}

// DecodeKV extracts a typed value from a raw key value and records the key's
// version on it.
func DecodeKV[V Value](kv *mvccpb.KeyValue) (V, error) {
	var zero V
	key := string(kv.Key)
	val, err := DecodeValue[V](kv.Value)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	val.SetVersion(kv.Version)
	return val, nil
}

func compress(in []byte) ([]byte, error) {
	if len(in) < compressionThreshold {
		// Don't compress if the data is below our threshold.
		return in, nil
	}
	var b bytes.Buffer
	gw := gzip.NewWriter(&b)
	if _, err := gw.Write(in); err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return b.Bytes(), nil
}

func decompress(in []byte) ([]byte, error) {
	if !bytes.HasPrefix(in, gzipMagic) {
		return in, nil
	}
	gr, err := gzip.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip reader: %w", err)
	}
	defer gr.Close()

	out, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}

	return out, nil
}
