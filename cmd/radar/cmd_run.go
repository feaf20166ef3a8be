package main

import (
	"os"

	"github.com/nulzo/model-radar/internal/cli"
	"github.com/spf13/cobra"
)

func newRunCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: catalog, benchmark, rank, deals and feed",
		Long: `Run the full pipeline once.

In strict mode the first failing stage halts the run and the command exits 1.
In best_effort mode a failing stage falls back to its last persisted snapshot
and the run completes as degraded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			report, runErr := a.pipeline.Run(ctx)
			if report != nil {
				if opts.jsonOut {
					cli.PrettyPrint(os.Stdout, report)
				} else {
					printReport(os.Stdout, report)
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "", "Override pipeline.mode (strict, best_effort)")
	return cmd
}
