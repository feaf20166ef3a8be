package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/services/arbitrage"
	"github.com/nulzo/model-radar/internal/store"
	"github.com/nulzo/model-radar/internal/telemetry"
	"github.com/nulzo/model-radar/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/nulzo/model-radar/pipeline"

// Mode controls what happens when a stage fails.
type Mode string

const (
	// Strict halts on the first failing stage.
	Strict Mode = "strict"
	// BestEffort logs the failure and moves on; later stages fall back to the last
	// persisted snapshot of their input.
	BestEffort Mode = "best_effort"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Strict, nil
	case Strict, BestEffort:
		return m, nil
	default:
		return "", &domain.ConfigError{Field: "pipeline.mode", Reason: fmt.Sprintf("unknown mode %q", s)}
	}
}

type Cataloger interface {
	Build(ctx context.Context) ([]domain.CatalogEntry, error)
}

type Benchmarker interface {
	Run(ctx context.Context, catalog []domain.CatalogEntry) ([]domain.BenchmarkResult, error)
	RunFromStore(ctx context.Context) ([]domain.BenchmarkResult, error)
}

type Ranker interface {
	Apply(ctx context.Context, catalog []domain.CatalogEntry, results []domain.BenchmarkResult) ([]domain.RankedModel, error)
	Calculate(ctx context.Context) ([]domain.RankedModel, error)
}

type Publisher interface {
	Publish(ctx context.Context, path, runID string) (*api.Feed, error)
}

// Report summarises one run.
type Report struct {
	Run         domain.RunRecord     `json:"run"`
	State       domain.PipelineState `json:"state"`
	Catalog     int                  `json:"catalog"`
	Benchmarked int                  `json:"benchmarked"`
	Ranked      []domain.RankedModel `json:"-"`
	Deals       domain.Deals         `json:"deals,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
}

type Orchestrator struct {
	logger     *zap.Logger
	repo       store.Repository
	catalog    Cataloger
	bench      Benchmarker
	ranker     Ranker
	thresholds arbitrage.Thresholds
	mode       Mode

	publisher Publisher
	feedPath  string

	metrics    *telemetry.Metrics
	tracer     trace.Tracer
	onComplete []func(*Report)
	now        func() time.Time

	running  sync.Mutex
	inflight sync.WaitGroup

	mu       sync.RWMutex
	last     *Report
	draining bool
}

type Option func(*Orchestrator)

func WithMode(m Mode) Option { return func(o *Orchestrator) { o.mode = m } }

func WithThresholds(t arbitrage.Thresholds) Option {
	return func(o *Orchestrator) { o.thresholds = t }
}

func WithMetrics(m *telemetry.Metrics) Option { return func(o *Orchestrator) { o.metrics = m } }

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) { o.tracer = tp.Tracer(tracerName) }
}

// WithFeed publishes the feed to path after every run that produced rankings.
func WithFeed(p Publisher, path string) Option {
	return func(o *Orchestrator) {
		o.publisher = p
		o.feedPath = path
	}
}

// OnComplete registers a hook called after every run, successful or not.
func OnComplete(fn func(*Report)) Option {
	return func(o *Orchestrator) { o.onComplete = append(o.onComplete, fn) }
}

func NewOrchestrator(logger *zap.Logger, repo store.Repository, c Cataloger, b Benchmarker, r Ranker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:     logger,
		repo:       repo,
		catalog:    c,
		bench:      b,
		ranker:     r,
		thresholds: arbitrage.DefaultThresholds(),
		mode:       Strict,
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Mode() Mode { return o.mode }

// Last returns the report of the most recent run in this process, or nil.
func (o *Orchestrator) Last() *Report {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last
}

// Run executes catalog, benchmark and rank in order. Concurrent calls fail with
// domain.ErrRunInProgress. In strict mode the first failure is returned as a
// *domain.StageError and the report's state stays on the failing stage.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()
	return o.run(ctx, uuid.NewString())
}

// Start launches a run in the background and returns its ID. The run is detached
// from ctx cancellation; OnComplete hooks observe its outcome and Wait blocks
// until it has finished.
func (o *Orchestrator) Start(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := o.acquire(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	go func() {
		defer o.release()
		_, _ = o.run(context.WithoutCancel(ctx), id)
	}()
	return id, nil
}

// Wait stops new runs from starting and blocks until the run in flight, if any,
// has finished or ctx is done. Call it before closing the repository.
func (o *Orchestrator) Wait(ctx context.Context) error {
	o.mu.Lock()
	o.draining = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for pipeline run: %w", ctx.Err())
	}
}

func (o *Orchestrator) acquire() error {
	if !o.running.TryLock() {
		return domain.ErrRunInProgress
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.draining {
		o.running.Unlock()
		return domain.ErrShuttingDown
	}
	o.inflight.Add(1)
	return nil
}

func (o *Orchestrator) release() {
	o.inflight.Done()
	o.running.Unlock()
}

func (o *Orchestrator) run(ctx context.Context, id string) (*Report, error) {
	report := &Report{
		Run: domain.RunRecord{
			ID:        id,
			Mode:      string(o.mode),
			StartedAt: o.now().UTC(),
		},
		State: domain.PipelineState{Stage: domain.StageStart},
	}
	log := o.logger.With(zap.String("run_id", report.Run.ID), zap.String("mode", string(o.mode)))

	ctx, span := o.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", report.Run.ID),
		attribute.String("run.mode", string(o.mode)),
	))
	defer span.End()

	log.Info("Pipeline started")
	err := o.execute(ctx, log, report)

	report.Run.Stage = report.State.Stage
	report.Run.FinishedAt = o.now().UTC()
	switch {
	case err != nil:
		report.Run.Status = domain.RunFailed
		report.Run.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case len(report.Warnings) > 0:
		report.Run.Status = domain.RunDegraded
		report.Run.Error = strings.Join(report.Warnings, "; ")
	default:
		report.Run.Status = domain.RunSucceeded
	}

	// the run is recorded even when the caller gave up
	if recErr := o.repo.Runs().Record(context.WithoutCancel(ctx), &report.Run); recErr != nil {
		log.Error("Failed to record pipeline run", zap.Error(recErr))
		report.Warnings = append(report.Warnings, fmt.Sprintf("record run: %v", recErr))
		if report.Run.Status == domain.RunSucceeded {
			report.Run.Status = domain.RunDegraded
		}
		if report.Run.Status == domain.RunDegraded {
			report.Run.Error = strings.Join(report.Warnings, "; ")
		}
	}
	o.metrics.RecordRun(string(report.Run.Status))

	o.mu.Lock()
	o.last = report
	o.mu.Unlock()

	for _, fn := range o.onComplete {
		fn(report)
	}

	fields := []zap.Field{
		zap.String("status", string(report.Run.Status)),
		zap.String("stage", string(report.State.Stage)),
		zap.Duration("elapsed", report.Run.FinishedAt.Sub(report.Run.StartedAt)),
	}
	if err != nil {
		log.Error("Pipeline halted", append(fields, zap.Error(err))...)
	} else {
		log.Info("Pipeline finished", fields...)
	}
	return report, err
}

func (o *Orchestrator) execute(ctx context.Context, log *zap.Logger, report *Report) error {
	state := &report.State

	// catalog
	state.Stage = domain.StageCatalog
	var entries []domain.CatalogEntry
	err := o.stage(ctx, domain.StageCatalog, func(ctx context.Context) (err error) {
		entries, err = o.catalog.Build(ctx)
		return err
	})
	if err != nil {
		if o.mode == Strict {
			return &domain.StageError{Stage: domain.StageCatalog, Err: err}
		}
		o.warn(log, report, domain.StageCatalog, err)
	} else {
		state.CatalogReady = true
		report.Catalog = len(entries)
	}

	// benchmark
	state.Stage = domain.StageBenchmark
	var results []domain.BenchmarkResult
	err = o.stage(ctx, domain.StageBenchmark, func(ctx context.Context) (err error) {
		if state.CatalogReady {
			results, err = o.bench.Run(ctx, entries)
		} else {
			results, err = o.bench.RunFromStore(ctx)
		}
		return err
	})
	if err != nil {
		if o.mode == Strict {
			return &domain.StageError{Stage: domain.StageBenchmark, Err: err}
		}
		o.warn(log, report, domain.StageBenchmark, err)
	} else {
		state.BenchmarksReady = true
		report.Benchmarked = len(results)
	}

	// rank
	state.Stage = domain.StageRank
	var ranked []domain.RankedModel
	err = o.stage(ctx, domain.StageRank, func(ctx context.Context) (err error) {
		if state.CatalogReady && state.BenchmarksReady {
			ranked, err = o.ranker.Apply(ctx, entries, results)
		} else {
			ranked, err = o.ranker.Calculate(ctx)
		}
		return err
	})
	if err != nil {
		if o.mode == Strict {
			return &domain.StageError{Stage: domain.StageRank, Err: err}
		}
		o.warn(log, report, domain.StageRank, err)
		state.Stage = domain.StageComplete
		return nil
	}
	state.RankingsReady = true
	report.Ranked = ranked

	deals := arbitrage.Detect(ranked, o.thresholds)
	report.Deals = deals
	for cat, models := range deals {
		o.metrics.SetDeals(string(cat), len(models))
	}
	log.Info("Arbitrage detected",
		zap.Int(string(domain.ValueKing), len(deals[domain.ValueKing])),
		zap.Int(string(domain.SpeedDemon), len(deals[domain.SpeedDemon])))

	if o.publisher != nil && o.feedPath != "" {
		if _, err := o.publisher.Publish(ctx, o.feedPath, report.Run.ID); err != nil {
			o.warn(log, report, domain.StageComplete, err)
		}
	}

	state.Stage = domain.StageComplete
	return nil
}

// stage runs fn inside a span and records its duration.
func (o *Orchestrator) stage(ctx context.Context, stage domain.Stage, fn func(context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "pipeline."+string(stage))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	o.metrics.RecordStage(string(stage), status, time.Since(start))
	return err
}

func (o *Orchestrator) warn(log *zap.Logger, report *Report, stage domain.Stage, err error) {
	msg := fmt.Sprintf("%s: %v", stage, err)
	report.Warnings = append(report.Warnings, msg)
	if errors.Is(err, domain.ErrPrerequisiteMissing) {
		log.Warn("Stage skipped, input missing", zap.String("stage", string(stage)), zap.Error(err))
		return
	}
	log.Warn("Stage failed, continuing", zap.String("stage", string(stage)), zap.Error(err))
}
