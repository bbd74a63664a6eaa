package recordstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wI2L/jsondiff"

	"github.com/pgEdge/recordstore/internal/storage"
)

// Change describes a single record write produced by a version change.
type Change struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Deleted    bool            `json:"deleted,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

// Patch returns the JSON Patch that transforms Before into After.
func (c Change) Patch() (jsondiff.Patch, error) {
	before := c.Before
	if before == nil {
		before = json.RawMessage("null")
	}
	after := c.After
	if after == nil {
		after = json.RawMessage("null")
	}
	patch, err := jsondiff.CompareJSON(before, after)
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s/%s: %w", c.Collection, c.ID, err)
	}

	return patch, nil
}

// Preview runs the same version change that Open would, but discards the
// resulting writes and returns them instead. Open hooks are not invoked.
// Preview returns no changes if the store does not exist or is already at the
// target version.
func Preview(ctx context.Context, client storage.EtcdClient, logger zerolog.Logger, opts Options) ([]Change, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	store := newStore(client, logger.With().Bool("dry_run", true).Logger(), opts)
	snap, err := readSnapshot(ctx, client, opts.Root)
	if err != nil {
		return nil, err
	}
	if snap.schema == nil {
		return nil, nil
	}
	newView, err := store.changeVersion(ctx, snap, opts)
	if err != nil {
		return nil, err
	}
	if newView == nil {
		return nil, nil
	}

	return newView.changes()
}

func (v *writeView) changes() ([]Change, error) {
	changes := make([]Change, 0, len(v.order))
	for _, key := range v.order {
		w := v.writes[key]
		change := Change{
			Collection: w.collection,
			ID:         w.id,
			Deleted:    w.deleted,
		}
		if w.base != nil {
			before, err := storage.DecodeValue[json.RawMessage](w.base.Value)
			if err != nil {
				return nil, fmt.Errorf("failed to decode %q: %w", key, err)
			}
			change.Before = before
		}
		if !w.deleted {
			after, err := storage.DecodeValue[json.RawMessage](w.encoded)
			if err != nil {
				return nil, fmt.Errorf("failed to decode %q: %w", key, err)
			}
			change.After = after
		}
		changes = append(changes, change)
	}

	return changes, nil
}
