package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/pgEdge/recordstore/server/internal/app"
	"github.com/pgEdge/recordstore/server/internal/config"
	"github.com/pgEdge/recordstore/server/internal/etcd"
	"github.com/pgEdge/recordstore/server/internal/filesystem"
	"github.com/pgEdge/recordstore/server/internal/logging"
	"github.com/pgEdge/recordstore/server/internal/migrate"
)

var (
	configPath string
	logger     zerolog.Logger
)

func newRootCmd(i *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:   "recordstore",
		Short: "Versioned record store with exactly-once schema migrations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// Source order determines precedence. The last source loaded will
			// override any previous values.
			var sources []*config.Source
			if configPath != "" {
				sources = append(sources, config.NewJsonFileSource(configPath))
			}
			sources = append(sources,
				config.NewEnvVarSource(),
				config.NewPFlagSource(cmd.Flags()),
			)

			// Providers are lazy, so commands that never touch the store
			// don't require a valid config.
			config.Provide(i, sources...)
			logging.Provide(i)
			etcd.Provide(i)
			filesystem.Provide(i)
			migrate.Provide(i)

			return nil
		},
	}
}

// initApp loads the config and builds the application. It also replaces the
// fallback logger used by Execute.
func initApp(i *do.Injector) (*app.App, error) {
	var err error
	logger, err = do.Invoke[zerolog.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a, err := app.NewApp(i)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return a, nil
}

func Execute() {
	i := do.New()
	rootCmd := newRootCmd(i)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config-path", "c", "", "Path to the config.json file for this service.")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Directory that the embedded etcd server stores its data in.")
	rootCmd.PersistentFlags().String("key-root", "", "Key prefix that the store lives under.")
	rootCmd.PersistentFlags().StringP("logging.level", "l", "", "The logging level, e.g. 'debug', 'info', 'error', etc.")
	rootCmd.PersistentFlags().BoolP("logging.pretty", "p", false, "Use pretty logging instead of JSON logging.")

	rootCmd.AddCommand(
		newOpenCommand(i),
		newMigrateCommand(i),
		newStatusCommand(i),
		newRecordsCommand(i),
		newGenerateMigrationCommand(i),
		newVersionCommand(i),
	)

	err := rootCmd.Execute()
	if shutdownErr := i.Shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	if err != nil {
		if logger.GetLevel() == zerolog.NoLevel {
			// NoLevel indicates that the logger is uninitialized. In this case
			// we'll use our fallback logger.
			logging.Fatal(err, "command failed")
		} else {
			logger.Fatal().
				Err(err).
				Msg("command failed")
		}
	}
}
