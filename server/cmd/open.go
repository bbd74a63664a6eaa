package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newOpenCommand(i *do.Injector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open the store, running pending migrations and reconciliation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := initApp(i)
			if err != nil {
				return err
			}
			store, err := a.Open(ctx)
			if err != nil {
				return a.Shutdown(err)
			}

			logger.Info().
				Str("root", store.Root()).
				Int64("schema_version", store.SchemaVersion()).
				Msg("store is open")

			return a.Shutdown(nil)
		},
	}
	cmd.Flags().Bool("seed-sample-data", false, "Insert the sample people if the store has none.")

	return cmd
}
