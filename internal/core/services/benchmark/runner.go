package benchmark

import (
	"context"
	"fmt"
	"strings"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/nulzo/model-radar/internal/store"
	"github.com/nulzo/model-radar/internal/telemetry"
	"go.uber.org/zap"
)

// RealMode decides whether tasks are executed against live providers.
type RealMode string

const (
	// RealAuto executes for real when any configured remote provider has an API key.
	RealAuto   RealMode = "auto"
	RealAlways RealMode = "always"
	RealNever  RealMode = "never"
)

// ParseRealMode maps a config value to a RealMode. Empty means auto.
func ParseRealMode(s string) (RealMode, error) {
	switch m := RealMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return RealAuto, nil
	case RealAuto, RealAlways, RealNever:
		return m, nil
	default:
		return "", &domain.ConfigError{Field: "benchmark.real_mode", Reason: fmt.Sprintf("unknown mode %q", s)}
	}
}

type Runner struct {
	logger    *zap.Logger
	repo      store.Repository
	providers map[string]ports.ModelProvider
	tasks     []Task
	sampler   *Sampler
	simulator *Simulator
	executor  *Executor
	mode      RealMode
	metrics   *telemetry.Metrics
}

type Option func(*Runner)

func WithTasks(tasks []Task) Option {
	return func(r *Runner) {
		if len(tasks) > 0 {
			r.tasks = tasks
		}
	}
}

func WithSampler(s *Sampler) Option     { return func(r *Runner) { r.sampler = s } }
func WithSimulator(s *Simulator) Option { return func(r *Runner) { r.simulator = s } }
func WithExecutor(e *Executor) Option   { return func(r *Runner) { r.executor = e } }
func WithRealMode(m RealMode) Option    { return func(r *Runner) { r.mode = m } }

func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

func NewRunner(logger *zap.Logger, repo store.Repository, providers []ports.ModelProvider, opts ...Option) *Runner {
	byName := make(map[string]ports.ModelProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	r := &Runner{
		logger:    logger,
		repo:      repo,
		providers: byName,
		tasks:     DefaultTasks(),
		mode:      RealAuto,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.sampler == nil {
		r.sampler = NewSampler(DefaultSampleSize, nil, nil)
	}
	if r.simulator == nil {
		r.simulator = NewSimulator(nil)
	}
	if r.executor == nil {
		r.executor = NewExecutor(LengthScorer{}, DefaultCallTimeout, DefaultMaxTokens)
	}
	return r
}

// RealEnabled reports whether the runner will attempt live execution at all.
func (r *Runner) RealEnabled() bool {
	switch r.mode {
	case RealNever:
		return false
	case RealAlways:
		return true
	}
	for _, p := range r.providers {
		desc := p.Descriptor()
		if !desc.IsLocal() && desc.HasKey() {
			return true
		}
	}
	return false
}

// RunFromStore benchmarks the persisted catalog.
func (r *Runner) RunFromStore(ctx context.Context) ([]domain.BenchmarkResult, error) {
	catalog, err := r.repo.Catalog().List(ctx)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, catalog)
}

// Run samples catalog, executes the task suite for each sampled model and replaces the
// benchmark snapshot.
func (r *Runner) Run(ctx context.Context, catalog []domain.CatalogEntry) ([]domain.BenchmarkResult, error) {
	sample := r.sampler.Sample(catalog)
	if len(sample) == 0 {
		return nil, fmt.Errorf("benchmark sample is empty: %w", domain.ErrNoArtifact)
	}

	live := r.RealEnabled()
	r.logger.Info("Benchmarking models",
		zap.Int("sampled", len(sample)),
		zap.Int("catalog", len(catalog)),
		zap.Bool("real", live))

	results := make([]domain.BenchmarkResult, 0, len(sample))
	for _, entry := range sample {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, r.benchmarkModel(ctx, entry, live))
	}

	if err := r.repo.Benchmarks().Replace(ctx, results); err != nil {
		return nil, fmt.Errorf("failed to persist benchmarks: %w", err)
	}
	return results, nil
}

func (r *Runner) benchmarkModel(ctx context.Context, entry domain.CatalogEntry, live bool) domain.BenchmarkResult {
	log := r.logger.With(zap.String("provider", entry.Provider), zap.String("model", entry.ModelID))

	provider := r.eligible(entry, live)
	scores := make(map[string]float64, len(r.tasks))
	var speedSum float64
	var realCount int

	for _, task := range r.tasks {
		var out Outcome
		var executed bool

		if provider != nil {
			o, err := r.executor.Execute(ctx, provider, entry.ModelID, task)
			if err != nil {
				log.Warn("Real benchmark failed, simulating", zap.String("task", task.Name), zap.Error(err))
			} else {
				out, executed = o, true
				realCount++
			}
		}
		if !executed {
			out = r.simulator.Run(entry.ModelID)
		}

		scores[task.Name] = round(out.Score, 4)
		speedSum += out.Speed
		r.metrics.RecordTask(task.Name, modeOf(out.Real), out.Latency)
	}

	var avgSpeed float64
	if len(r.tasks) > 0 {
		avgSpeed = round(speedSum/float64(len(r.tasks)), 4)
	}

	mode := domain.ModeMixed
	switch realCount {
	case 0:
		mode = domain.ModeSimulated
	case len(r.tasks):
		mode = domain.ModeReal
	}

	log.Debug("Benchmarked model", zap.Float64("avg_speed", avgSpeed), zap.String("mode", string(mode)))

	return domain.BenchmarkResult{
		ModelID:  entry.ModelID,
		Provider: entry.Provider,
		Scores:   scores,
		AvgSpeed: avgSpeed,
		Mode:     mode,
	}
}

// eligible returns the provider to execute entry against, or nil when it must be simulated.
func (r *Runner) eligible(entry domain.CatalogEntry, live bool) ports.ModelProvider {
	if !live {
		return nil
	}
	p, ok := r.providers[entry.Provider]
	if !ok {
		return nil
	}
	desc := p.Descriptor()
	if desc.IsLocal() || !desc.HasKey() {
		return nil
	}
	return p
}

func modeOf(live bool) string {
	if live {
		return string(domain.ModeReal)
	}
	return string(domain.ModeSimulated)
}
