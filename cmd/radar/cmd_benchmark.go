package main

import (
	"os"

	"github.com/nulzo/model-radar/internal/cli"
	"github.com/nulzo/model-radar/internal/core/services/benchmark"
	"github.com/spf13/cobra"
)

func newBenchmarkCommand(opts *globalOptions) *cobra.Command {
	var realMode string
	var sampleSize int

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Benchmark a sample of the stored catalog",
		Long: `Sample the stored catalog (head, random and keyword matches) and run every
benchmark task against each sampled model. Remote providers with an API key
are called for real when real execution is enabled; everything else is
simulated. The result replaces the stored benchmark snapshot.

Requires a catalog snapshot (run "radar catalog" first).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts.realMode = realMode
			opts.sampleSize = sampleSize

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			results, err := a.bench.RunFromStore(ctx)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				cli.PrettyPrint(os.Stdout, results)
				return nil
			}
			printBenchmarks(os.Stdout, results)
			return nil
		},
	}

	cmd.Flags().StringVar(&realMode, "real", "", "Override benchmark.real_mode ("+string(benchmark.RealAuto)+", "+string(benchmark.RealAlways)+", "+string(benchmark.RealNever)+")")
	cmd.Flags().IntVarP(&sampleSize, "sample", "n", 0, "Override benchmark.sample_size")
	return cmd
}
