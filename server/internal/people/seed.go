package people

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pgEdge/recordstore/server/internal/recordstore"
)

// SampleData returns the people that Seed inserts.
func SampleData() []*Person {
	return []*Person{
		NewPerson("Jotaro Kujo", "jotaro@kujo.com"),
		NewPerson("Joseph Joestar", "joseph@joestar.com"),
		NewPerson("Muhammad Avdol", "muhammad@avdol.com"),
		NewPerson("Dio Brando", "Dio@Brando.com"),
	}
}

// Seed inserts the sample data in a single transaction unless the store
// already contains people. It returns the number of people inserted.
func Seed(ctx context.Context, tx recordstore.Transactor) (int, error) {
	var inserted int
	err := tx.Update(ctx, func(view recordstore.View) error {
		count, err := People.Count(ctx, view)
		if err != nil {
			return fmt.Errorf("failed to count people: %w", err)
		}
		if count > 0 {
			return nil
		}
		for _, person := range SampleData() {
			if err := People.Put(ctx, view, person); err != nil {
				return fmt.Errorf("failed to insert %q: %w", person.Name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// OnOpen returns a recordstore.OpenFunc that seeds the store.
func OnOpen(logger zerolog.Logger) recordstore.OpenFunc {
	logger = logger.With().
		Str("component", "people_seed").
		Logger()

	return func(ctx context.Context, tx recordstore.Transactor) error {
		inserted, err := Seed(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to seed sample data: %w", err)
		}
		if inserted == 0 {
			logger.Debug().Msg("sample data already exists, skipping")
			return nil
		}
		logger.Info().Int("count", inserted).Msg("inserted sample data")

		return nil
	}
}
