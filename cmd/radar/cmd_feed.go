package main

import (
	"fmt"
	"os"

	"github.com/nulzo/model-radar/internal/cli"
	"github.com/spf13/cobra"
)

func newFeedCommand(opts *globalOptions) *cobra.Command {
	var out string
	var stdout bool

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Publish the live intelligence feed from the stored rankings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			var runID string
			if run, err := a.repo.Runs().Latest(ctx); err == nil && run != nil {
				runID = run.ID
			}

			if stdout {
				f, err := a.feed.Generate(ctx, runID)
				if err != nil {
					return err
				}
				cli.PrettyPrint(os.Stdout, f)
				return nil
			}

			path := out
			if path == "" {
				path = a.cfg.Feed.Path
			}
			f, err := a.feed.Publish(ctx, path, runID)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s feed written to %s (%d models, %d value kings, %d speed demons)\n",
				cli.CheckMark(), path, f.Metadata.TotalModelsScanned,
				len(f.ArbitrageAlerts.ValueKings), len(f.ArbitrageAlerts.SpeedDemons))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Feed file path (default: feed.path)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the feed instead of writing the file")
	return cmd
}
