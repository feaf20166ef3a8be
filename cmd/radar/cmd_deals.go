package main

import (
	"os"

	"github.com/nulzo/model-radar/internal/cli"
	"github.com/spf13/cobra"
)

func newDealsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deals",
		Short: "Show arbitrage deals in the stored rankings",
		Long: `Classify the stored rankings into value kings (high quality at low cost) and
speed demons (fast at very low cost) using the arbitrage thresholds. Rankings
are recalculated from the stored catalog and benchmarks when absent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			deals, err := a.detector.DetectFromStore(ctx)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				cli.PrettyPrint(os.Stdout, deals)
				return nil
			}
			printDeals(os.Stdout, deals)
			return nil
		},
	}
}
