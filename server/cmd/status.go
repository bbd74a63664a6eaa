package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newStatusCommand(i *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := initApp(i)
			if err != nil {
				return err
			}
			status, err := a.Status(ctx)
			if err != nil {
				return a.Shutdown(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schema version %d of %d\n\n", status.SchemaVersion, status.TargetVersion)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCREATED\tSTATE\tAPPLIED")
			for _, m := range status.Migrations {
				state := "pending"
				applied := "-"
				if m.Applied {
					state = "applied"
					if m.Backfilled {
						state = "backfilled"
					}
					applied = humanize.Time(m.AppliedAt)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, humanize.Time(m.CreatedAt), state, applied)
			}
			for _, name := range status.Unknown {
				fmt.Fprintf(w, "%s\t-\tunknown\t-\n", name)
			}
			if err := w.Flush(); err != nil {
				return a.Shutdown(fmt.Errorf("failed to write status: %w", err))
			}

			return a.Shutdown(nil)
		},
	}
}
