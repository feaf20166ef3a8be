package main

import (
	"fmt"
	"os"

	"github.com/nulzo/model-radar/internal/cli"
	"github.com/spf13/cobra"
)

func newRankCommand(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank the stored catalog against the stored benchmarks",
		Long: `Join the stored catalog with the stored benchmark results, compute the value
score (mean task score per average dollar) of every model and replace the
rankings snapshot. Models without a benchmark result are not ranked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			entries, err := a.repo.Catalog().List(ctx)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			results, err := a.repo.Benchmarks().List(ctx)
			if err != nil {
				return fmt.Errorf("load benchmarks: %w", err)
			}

			ranked, err := a.ranker.Apply(ctx, entries, results)
			if err != nil {
				return err
			}
			if limit > 0 && len(ranked) > limit {
				ranked = ranked[:limit]
			}

			if opts.jsonOut {
				cli.PrettyPrint(os.Stdout, ranked)
				return nil
			}
			printRanked(os.Stdout, ranked)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Only print the top N models")
	return cmd
}
