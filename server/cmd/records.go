package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-yaml"
	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/pgEdge/recordstore/internal/storage"
	"github.com/pgEdge/recordstore/server/internal/recordstore"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

func newRecordsCommand(i *do.Injector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect stored records",
	}
	cmd.AddCommand(newRecordsListCommand(i))

	return cmd
}

func newRecordsListCommand(i *do.Injector) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List the records in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputJSON && output != outputYAML {
				return fmt.Errorf("invalid output format %q, expected %q or %q", output, outputJSON, outputYAML)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := initApp(i)
			if err != nil {
				return err
			}

			var records []map[string]any
			err = a.Inspect(ctx, func(view recordstore.View) error {
				kvs, err := view.List(ctx, args[0])
				if err != nil {
					return err
				}
				records = make([]map[string]any, len(kvs))
				for idx, kv := range kvs {
					record, err := storage.DecodeValue[map[string]any](kv.Value)
					if err != nil {
						return fmt.Errorf("failed to decode %q: %w", kv.Key, err)
					}
					records[idx] = record
				}
				return nil
			})
			if err != nil {
				return a.Shutdown(fmt.Errorf("failed to list records: %w", err))
			}

			raw, err := marshalRecords(records, output)
			if err != nil {
				return a.Shutdown(err)
			}
			if _, err := cmd.OutOrStdout().Write(raw); err != nil {
				return a.Shutdown(err)
			}

			return a.Shutdown(nil)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "Output format, either 'json' or 'yaml'.")

	return cmd
}

func marshalRecords(records []map[string]any, output string) ([]byte, error) {
	switch output {
	case outputYAML:
		raw, err := yaml.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal records to yaml: %w", err)
		}
		return raw, nil
	default:
		raw, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal records to json: %w", err)
		}
		return append(raw, '\n'), nil
	}
}
