package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pgEdge/recordstore/server/internal/recordstore"
)

// AddEmailToPerson derives an email address for every person that was stored
// before the email field existed.
type AddEmailToPerson struct{}

func (m *AddEmailToPerson) Identifier() string {
	return "migrationAddEmailToPerson1699822619037"
}

func (m *AddEmailToPerson) Run(ctx context.Context, _, newView recordstore.View) error {
	logger := zerolog.Ctx(ctx)

	people, err := personRecords.All(ctx, newView)
	if err != nil {
		return fmt.Errorf("failed to query for people: %w", err)
	}

	for _, person := range people {
		if person.Email != "" {
			logger.Debug().
				Str("person_id", person.ID).
				Msg("person already has an email, skipping")
			continue
		}
		person.Email = strings.ToLower(strings.Replace(person.Name, " ", ".", 1)) + "@example.com"
		if err := personRecords.Put(ctx, newView, person); err != nil {
			return fmt.Errorf("failed to migrate person %s: %w", person.ID, err)
		}
	}

	return nil
}
