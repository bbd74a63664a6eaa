package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/recordstore/internal/storage"
	"github.com/pgEdge/recordstore/server/internal/ds"
	"github.com/pgEdge/recordstore/server/internal/recordstore"
	"github.com/pgEdge/recordstore/server/internal/version"
)

// AuditCollection is the collection that audit records are stored in.
const AuditCollection = "MigrationRecord"

// AuditRecord is the proof that a migration has been applied to a store.
type AuditRecord struct {
	storage.StoredValue
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	// Backfilled is true when the record was written by the Reconciler
	// rather than by running the migration.
	Backfilled       bool          `json:"backfilled,omitempty"`
	RunByVersionInfo *version.Info `json:"run_by_version_info,omitempty"`
}

func newAuditRecord(name string, backfilled bool, versionInfo *version.Info) *AuditRecord {
	return &AuditRecord{
		ID:               uuid.New(),
		Name:             name,
		CreatedAt:        time.Now(),
		Backfilled:       backfilled,
		RunByVersionInfo: versionInfo,
	}
}

// AuditStore provides typed access to audit records through a view.
type AuditStore struct {
	records *recordstore.Collection[*AuditRecord]
}

func NewAuditStore() *AuditStore {
	return &AuditStore{
		records: recordstore.NewCollection(AuditCollection, func(r *AuditRecord) string {
			return r.ID.String()
		}),
	}
}

func (s *AuditStore) All(ctx context.Context, view recordstore.View) ([]*AuditRecord, error) {
	records, err := s.records.All(ctx, view)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration records: %w", err)
	}
	return records, nil
}

// FindByName returns the audit record for the named migration, or an error
// wrapping storage.ErrNotFound.
func (s *AuditStore) FindByName(ctx context.Context, view recordstore.View, name string) (*AuditRecord, error) {
	records, err := s.All(ctx, view)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Name == name {
			return r, nil
		}
	}

	return nil, fmt.Errorf("migration record %q: %w", name, storage.ErrNotFound)
}

// AppliedNames returns the set of migration names with an audit record.
func (s *AuditStore) AppliedNames(ctx context.Context, view recordstore.View) (ds.Set[string], error) {
	records, err := s.All(ctx, view)
	if err != nil {
		return nil, err
	}
	applied := ds.NewSet[string]()
	for _, r := range records {
		applied.Add(r.Name)
	}

	return applied, nil
}

func (s *AuditStore) Count(ctx context.Context, view recordstore.View) (int, error) {
	count, err := s.records.Count(ctx, view)
	if err != nil {
		return 0, fmt.Errorf("failed to count migration records: %w", err)
	}
	return count, nil
}

func (s *AuditStore) Create(ctx context.Context, view recordstore.View, record *AuditRecord) error {
	if err := s.records.Put(ctx, view, record); err != nil {
		return fmt.Errorf("failed to write migration record %q: %w", record.Name, err)
	}
	return nil
}
