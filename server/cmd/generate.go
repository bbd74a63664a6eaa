package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pgEdge/recordstore/server/internal/filesystem"
	"github.com/pgEdge/recordstore/server/internal/scaffold"
)

func newGenerateMigrationCommand(i *do.Injector) *cobra.Command {
	var opts scaffold.Options

	cmd := &cobra.Command{
		Use:   "generate-migration <label...>",
		Short: "Write a stub migration and regenerate the migration index",
		Long: "Write a stub migration and regenerate the migration index. Paths are\n" +
			"relative to the module root that contains the working directory.",
		Example: "  recordstore generate-migration add phone number to person\n" +
			"  recordstore generate-migration \"Split Person Name\" --dir server/internal/migrate/migrations",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := do.InvokeNamed[afero.Fs](i, filesystem.SourceFsName)
			if err != nil {
				return fmt.Errorf("failed to get filesystem: %w", err)
			}
			// This command runs from a source checkout and doesn't load the
			// store config.
			lg := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				With().
				Timestamp().
				Logger()

			generator := scaffold.NewGenerator(fs, lg, opts)
			file, err := generator.Generate(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to generate migration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), file.Path)

			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Dir, "dir", scaffold.DefaultMigrationsDir, "Directory that migration files are written to.")
	cmd.Flags().StringVar(&opts.IndexPath, "index", scaffold.DefaultIndexPath, "Path of the generated migration index.")
	cmd.Flags().StringVar(&opts.ImportPath, "import-path", scaffold.DefaultImportPath, "Go import path of the migrations directory.")

	return cmd
}
