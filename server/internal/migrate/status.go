package migrate

import (
	"context"
	"strings"
	"time"

	"github.com/pgEdge/recordstore/server/internal/ds"
	"github.com/pgEdge/recordstore/server/internal/recordstore"
)

type MigrationStatus struct {
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	Applied    bool      `json:"applied"`
	AppliedAt  time.Time `json:"applied_at,omitzero"`
	Backfilled bool      `json:"backfilled,omitempty"`
}

type Status struct {
	SchemaVersion int64             `json:"schema_version"`
	TargetVersion int64             `json:"target_version"`
	Migrations    []MigrationStatus `json:"migrations"`
	// Unknown lists applied migrations that are no longer registered.
	Unknown []string `json:"unknown,omitempty"`
}

// Pending returns the names of the registered migrations that have not been
// applied, in execution order.
func (s *Status) Pending() []string {
	var pending []string
	for _, m := range s.Migrations {
		if !m.Applied {
			pending = append(pending, m.Name)
		}
	}
	return pending
}

// GetStatus reports which registered migrations have been applied to the store
// that view belongs to.
func GetStatus(ctx context.Context, registry *Registry, audit *AuditStore, view recordstore.View) (*Status, error) {
	records, err := audit.All(ctx, view)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*AuditRecord, len(records))
	for _, r := range records {
		byName[r.Name] = r
	}

	status := &Status{
		SchemaVersion: view.SchemaVersion(),
		TargetVersion: registry.TargetVersion(),
		Migrations:    make([]MigrationStatus, len(registry.entries)),
	}
	registered := ds.NewSet[string]()
	for i, e := range registry.entries {
		registered.Add(e.name)
		m := MigrationStatus{
			Name:      e.name,
			CreatedAt: e.created,
		}
		if r, ok := byName[e.name]; ok {
			m.Applied = true
			m.AppliedAt = r.CreatedAt
			m.Backfilled = r.Backfilled
		}
		status.Migrations[i] = m
	}
	applied := ds.NewSet[string]()
	for name := range byName {
		applied.Add(name)
	}
	status.Unknown = applied.Difference(registered).ToSortedSlice(strings.Compare)

	return status, nil
}
