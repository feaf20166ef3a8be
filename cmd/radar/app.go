package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/nulzo/model-radar/internal/adapters/cache/memory"
	"github.com/nulzo/model-radar/internal/adapters/cache/redis"
	"github.com/nulzo/model-radar/internal/cli"
	"github.com/nulzo/model-radar/internal/config"
	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/nulzo/model-radar/internal/core/services/arbitrage"
	"github.com/nulzo/model-radar/internal/core/services/benchmark"
	"github.com/nulzo/model-radar/internal/core/services/catalog"
	"github.com/nulzo/model-radar/internal/core/services/feed"
	"github.com/nulzo/model-radar/internal/core/services/pipeline"
	"github.com/nulzo/model-radar/internal/core/services/pricing"
	"github.com/nulzo/model-radar/internal/core/services/ranking"
	"github.com/nulzo/model-radar/internal/platform/logger"
	"github.com/nulzo/model-radar/internal/platform/otel"
	"github.com/nulzo/model-radar/internal/registry"
	"github.com/nulzo/model-radar/internal/store"
	"github.com/nulzo/model-radar/internal/store/sqlite"
	"github.com/nulzo/model-radar/internal/telemetry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	// Import providers to trigger init() registration
	_ "github.com/nulzo/model-radar/internal/adapters/providers/ollama"
	_ "github.com/nulzo/model-radar/internal/adapters/providers/openai"
)

// app holds the wired services shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *telemetry.Metrics
	tracer  *sdktrace.TracerProvider
	repo    store.Repository

	catalog  *catalog.Builder
	bench    *benchmark.Runner
	ranker   *ranking.Engine
	detector *arbitrage.Detector
	feed     *feed.Generator
	pipeline *pipeline.Orchestrator

	closers []func() error
}

func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = strings.ToLower(opts.logLevel)
	}
	if opts.mode != "" {
		cfg.Pipeline.Mode = strings.ToLower(opts.mode)
	}
	if opts.realMode != "" {
		cfg.Benchmark.RealMode = strings.ToLower(opts.realMode)
	}
	if opts.sampleSize > 0 {
		cfg.Benchmark.SampleSize = opts.sampleSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cli.SetEnabled(!opts.noColor && cli.IsTerminal(os.Stdout))

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Color && !opts.noColor && cli.IsTerminal(os.Stderr),
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, logger: log, metrics: telemetry.NewMetrics()}
	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg

	traceOut, closeTrace, err := otel.OpenOutput(cfg.Tracing.Output)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closeTrace)
	a.tracer, err = otel.InitTracer("model-radar", cfg.Tracing.Enabled, traceOut, a.logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, func() error { return a.tracer.Shutdown(context.Background()) })

	if dir := filepath.Dir(cfg.Database.Path); !strings.HasPrefix(cfg.Database.Path, "file:") && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}
	a.repo, err = sqlite.NewSQLiteStorage(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, a.repo.Close)

	providers, err := registry.Build(cfg.Providers, nil)
	if err != nil {
		return err
	}

	realMode, err := benchmark.ParseRealMode(cfg.Benchmark.RealMode)
	if err != nil {
		return err
	}
	mode, err := pipeline.ParseMode(cfg.Pipeline.Mode)
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if seed := cfg.Benchmark.Seed; seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	a.catalog = catalog.NewBuilder(a.logger.Named("catalog"), a.repo, providers, pricing.NewResolver(nil),
		catalog.WithTimeout(cfg.Catalog.Timeout),
		catalog.WithMetrics(a.metrics))
	a.bench = benchmark.NewRunner(a.logger.Named("benchmark"), a.repo, providers,
		benchmark.WithTasks(cfg.Benchmark.Tasks),
		benchmark.WithSampler(benchmark.NewSampler(cfg.Benchmark.SampleSize, cfg.Benchmark.Keywords, rng)),
		benchmark.WithExecutor(benchmark.NewExecutor(benchmark.LengthScorer{}, cfg.Benchmark.Timeout, cfg.Benchmark.MaxTokens)),
		benchmark.WithRealMode(realMode),
		benchmark.WithMetrics(a.metrics))
	a.ranker = ranking.NewEngine(a.logger.Named("ranking"), a.repo)
	a.detector = arbitrage.NewDetector(a.logger.Named("arbitrage"), a.repo, a.ranker, cfg.Arbitrage)
	a.feed = feed.NewGenerator(a.logger.Named("feed"), a.repo, cfg.Feed.Thresholds, cfg.Feed.TopN)

	popts := []pipeline.Option{
		pipeline.WithMode(mode),
		pipeline.WithThresholds(cfg.Arbitrage),
		pipeline.WithMetrics(a.metrics),
		pipeline.WithTracerProvider(a.tracer),
	}
	if cfg.Feed.Path != "" {
		popts = append(popts, pipeline.WithFeed(a.feed, cfg.Feed.Path))
	}
	a.pipeline = pipeline.NewOrchestrator(a.logger.Named("pipeline"), a.repo, a.catalog, a.bench, a.ranker, popts...)

	a.logger.Debug("Application wired",
		zap.Int("providers", len(providers)),
		zap.String("mode", string(mode)),
		zap.String("real_mode", string(realMode)),
		zap.String("database", cfg.Database.Path),
	)
	return nil
}

// cache returns the feed cache configured for the server.
func (a *app) cache(ctx context.Context) (ports.CacheService, error) {
	if !a.cfg.Redis.Enabled {
		return memory.NewMemoryCache(), nil
	}
	c, err := redis.New(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, c.Close)
	return c, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
