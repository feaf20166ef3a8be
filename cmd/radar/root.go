package main

import (
	"github.com/nulzo/model-radar/internal/version"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	logLevel   string
	noColor    bool
	jsonOut    bool

	// per-command overrides of config values
	mode       string
	realMode   string
	sampleSize int
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "radar",
		Short: "Model Radar - price, benchmark and rank LLM offerings across providers",
		Long: `Model Radar discovers the models published by a set of LLM providers,
attaches prices, benchmarks a sample of them and ranks everything by value
(quality per dollar). Outlier deals are reported as value kings and speed demons.

Each stage persists a snapshot, so stages can be run on their own:

  radar catalog     discover models and prices
  radar benchmark   benchmark a sample of the stored catalog
  radar rank        rank the stored catalog against the stored benchmarks
  radar run         all of the above, then publish the feed`,
		Version:      version.Version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default: ./config.yaml or ./config/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable coloured output")
	flags.BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newCatalogCommand(opts))
	cmd.AddCommand(newBenchmarkCommand(opts))
	cmd.AddCommand(newRankCommand(opts))
	cmd.AddCommand(newDealsCommand(opts))
	cmd.AddCommand(newFeedCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}
