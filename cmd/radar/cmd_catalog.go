package main

import (
	"fmt"
	"os"

	"github.com/nulzo/model-radar/internal/cli"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/services/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCommand(opts *globalOptions) *cobra.Command {
	var cached bool
	var export string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Discover models from every provider and attach prices",
		Long: `Query the models endpoint of every configured provider, normalize the
responses and attach a price to each model. Providers that fail or return
nothing fall back to their suggested models. The result replaces the stored
catalog snapshot.

Use --cached to print the stored snapshot without contacting providers, and
--export to write it as YAML ("-" for stdout).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			var entries []domain.CatalogEntry
			if cached {
				entries, err = a.repo.Catalog().List(ctx)
			} else {
				entries, err = a.catalog.Build(ctx)
			}
			if err != nil {
				return err
			}

			switch export {
			case "":
			case "-":
				return catalog.Export(os.Stdout, entries)
			default:
				f, err := os.Create(export)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := catalog.Export(f, entries); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "%s catalog exported to %s\n", cli.CheckMark(), export)
			}

			if opts.jsonOut {
				cli.PrettyPrint(os.Stdout, entries)
				return nil
			}
			printCatalog(os.Stdout, entries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Print the stored catalog instead of discovering")
	cmd.Flags().StringVar(&export, "export", "", "Write the catalog as YAML to this path (\"-\" for stdout)")
	return cmd
}
