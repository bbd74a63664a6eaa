package migrate

import (
	"cmp"
	"slices"
	"time"
)

type entry struct {
	migration Migration
	name      string
	created   time.Time
}

// Registry is the ordered, immutable set of known migrations.
type Registry struct {
	entries []entry
}

// NewRegistry validates the given migrations and orders them by the timestamp
// in their names, regardless of the order they're given in. Migrations with
// the same timestamp are ordered by name.
func NewRegistry(migrations ...Migration) (*Registry, error) {
	entries := make([]entry, 0, len(migrations))
	seen := map[string]bool{}
	for _, m := range migrations {
		name := m.Identifier()
		if seen[name] {
			return nil, &DuplicateMigrationNameError{Name: name}
		}
		seen[name] = true

		_, created, err := ParseName(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{
			migration: m,
			name:      name,
			created:   created,
		})
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := a.created.Compare(b.created); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	return &Registry{entries: entries}, nil
}

// List returns the migrations in execution order.
func (r *Registry) List() []Migration {
	out := make([]Migration, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.migration
	}
	return out
}

// Names returns the migration names in execution order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// TargetVersion is the schema version that a store with all of these
// migrations applied is at.
func (r *Registry) TargetVersion() int64 {
	return int64(len(r.entries))
}
