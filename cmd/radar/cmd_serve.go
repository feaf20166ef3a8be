package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/services/arbitrage"
	"github.com/nulzo/model-radar/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var port string
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the snapshots over HTTP",
		Long: `Start the HTTP API over the stored snapshots.

  GET  /health, /ready, /metrics
  GET  /v1/providers, /v1/catalog, /v1/benchmarks, /v1/rankings?limit=N
  GET  /v1/deals, /v1/feed
  POST /v1/pipeline/runs[?wait=true]
  GET  /v1/pipeline/runs/latest

With --refresh the pipeline is also run on that interval in the background.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			if port != "" {
				a.cfg.Server.Port = port
			}

			cache, err := a.cache(ctx)
			if err != nil {
				return err
			}

			// rankings are only written by pipeline runs, under the run lock
			deals := arbitrage.NewDetector(a.logger.Named("arbitrage"), a.repo, nil, a.cfg.Arbitrage)

			srv := server.New(a.cfg, a.logger.Named("http"), server.Deps{
				Repo:     a.repo,
				Pipeline: a.pipeline,
				Deals:    deals,
				Feed:     a.feed,
				Cache:    cache,
				Metrics:  a.metrics,
			})

			if refresh > 0 {
				go schedule(ctx, a, refresh)
			}
			runErr := srv.Run(ctx)

			// the deferred Close must not pull the database from under a run in flight
			grace := a.cfg.Server.ShutdownTimeout
			if grace <= 0 {
				grace = 10 * time.Second
			}
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
			defer cancel()
			if err := a.pipeline.Wait(drainCtx); err != nil {
				a.logger.Warn("Pipeline run still in flight at shutdown", zap.Error(err))
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Override server.port")
	cmd.Flags().DurationVar(&refresh, "refresh", 0, "Run the pipeline on this interval (0 disables)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "Override pipeline.mode (strict, best_effort)")
	return cmd
}

// schedule starts a pipeline run immediately and then on every tick. Ticks that
// land on a run still in progress are skipped.
func schedule(ctx context.Context, a *app, every time.Duration) {
	log := a.logger.Named("scheduler")
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if _, err := a.pipeline.Start(ctx); err != nil {
			if ctx.Err() != nil || errors.Is(err, domain.ErrShuttingDown) {
				return
			}
			if errors.Is(err, domain.ErrRunInProgress) {
				log.Info("Skipping scheduled run, previous run still in progress")
			} else {
				log.Error("Scheduled run failed to start", zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
