package migrations

import (
	"github.com/pgEdge/recordstore/internal/storage"
	"github.com/pgEdge/recordstore/server/internal/recordstore"
)

// personRecord is the shape of a Person record as the migrations in this
// package know it. It's kept separate from the people package so that these
// migrations keep working as that schema evolves.
type personRecord struct {
	storage.StoredValue
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

var personRecords = recordstore.NewCollection("Person", func(p *personRecord) string {
	return p.ID
})
