package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pgEdge/recordstore/server/internal/recordstore"
)

// LowercasePersonEmail normalizes email addresses to lower case.
type LowercasePersonEmail struct{}

func (m *LowercasePersonEmail) Identifier() string {
	return "migrationLowercasePersonEmail1701107352418"
}

func (m *LowercasePersonEmail) Run(ctx context.Context, _, newView recordstore.View) error {
	logger := zerolog.Ctx(ctx)

	people, err := personRecords.All(ctx, newView)
	if err != nil {
		return fmt.Errorf("failed to query for people: %w", err)
	}

	var updated int
	for _, person := range people {
		lower := strings.ToLower(person.Email)
		if lower == person.Email {
			continue
		}
		person.Email = lower
		if err := personRecords.Put(ctx, newView, person); err != nil {
			return fmt.Errorf("failed to migrate person %s: %w", person.ID, err)
		}
		updated++
	}

	logger.Info().Int("updated", updated).Msg("lowercased person emails")

	return nil
}
