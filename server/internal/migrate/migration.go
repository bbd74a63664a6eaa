package migrate

import (
	"context"

	"github.com/pgEdge/recordstore/server/internal/recordstore"
)

// Migration defines the interface for schema migrations.
type Migration interface {
	// Identifier returns the unique name of this migration. It must follow
	// the migration<Label><TimestampMillis> convention, see Name.
	Identifier() string
	// Run transforms records from the pre-upgrade shape, read through
	// oldView, into the post-upgrade shape by writing to newView. The logger
	// for the migration is available through zerolog.Ctx.
	Run(ctx context.Context, oldView, newView recordstore.View) error
}
