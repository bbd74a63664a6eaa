package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"github.com/spf13/cobra"
	"github.com/wI2L/jsondiff"
)

type changePreview struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Deleted    bool           `json:"deleted,omitempty"`
	Patch      jsondiff.Patch `json:"patch"`
}

func newMigrateCommand(i *do.Injector) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run pending migrations",
		Long: "Run pending migrations. With --dry-run, the writes that the migrations " +
			"would make are printed as JSON Patches and nothing is committed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := initApp(i)
			if err != nil {
				return err
			}
			if !dryRun {
				store, err := a.Open(ctx)
				if err != nil {
					return a.Shutdown(err)
				}
				logger.Info().
					Int64("schema_version", store.SchemaVersion()).
					Msg("migrations complete")

				return a.Shutdown(nil)
			}

			changes, err := a.Preview(ctx)
			if err != nil {
				return a.Shutdown(err)
			}
			previews := make([]changePreview, len(changes))
			for idx, change := range changes {
				patch, err := change.Patch()
				if err != nil {
					return a.Shutdown(err)
				}
				previews[idx] = changePreview{
					Collection: change.Collection,
					ID:         change.ID,
					Deleted:    change.Deleted,
					Patch:      patch,
				}
			}
			raw, err := json.MarshalIndent(previews, "", "  ")
			if err != nil {
				return a.Shutdown(fmt.Errorf("failed to marshal changes: %w", err))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))

			return errors.Join(err, a.Shutdown(nil))
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the pending changes without committing them.")

	return cmd
}
