package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/store"
	"go.uber.org/zap"
)

// Epsilon keeps free models from dividing by zero.
const Epsilon = 1e-4

// Rank joins catalog and results on (provider, model_id) and orders the joined rows
// by value score, highest first. Rows present on only one side are dropped. Ties keep
// catalog order.
func Rank(catalog []domain.CatalogEntry, results []domain.BenchmarkResult) []domain.RankedModel {
	byKey := make(map[domain.ModelKey]domain.BenchmarkResult, len(results))
	for _, r := range results {
		if _, dup := byKey[r.Key()]; !dup {
			byKey[r.Key()] = r
		}
	}

	ranked := make([]domain.RankedModel, 0, len(results))
	joined := make(map[domain.ModelKey]struct{}, len(results))
	for _, e := range catalog {
		res, ok := byKey[e.Key()]
		if !ok {
			continue
		}
		if _, dup := joined[e.Key()]; dup {
			continue
		}
		joined[e.Key()] = struct{}{}

		perf := meanScore(res.Scores)
		cost := (e.InputPrice + e.OutputPrice) / 2
		ranked = append(ranked, domain.RankedModel{
			ModelID:     e.ModelID,
			Provider:    e.Provider,
			AvgPerf:     perf,
			AvgCost:     cost,
			ValueScore:  perf / (cost + Epsilon),
			AvgSpeed:    res.AvgSpeed,
			InputPrice:  e.InputPrice,
			OutputPrice: e.OutputPrice,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ValueScore > ranked[j].ValueScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// meanScore averages the per-task scores; a result without scores has no performance.
func meanScore(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// Engine computes rankings from the persisted snapshots.
type Engine struct {
	logger *zap.Logger
	repo   store.Repository
}

func NewEngine(logger *zap.Logger, repo store.Repository) *Engine {
	return &Engine{logger: logger, repo: repo}
}

// Calculate ranks the stored catalog against the stored benchmarks and replaces the
// rankings snapshot. Either input snapshot missing yields a PrerequisiteError and
// leaves the rankings untouched.
func (e *Engine) Calculate(ctx context.Context) ([]domain.RankedModel, error) {
	catalog, err := e.repo.Catalog().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	results, err := e.repo.Benchmarks().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load benchmarks: %w", err)
	}
	return e.Apply(ctx, catalog, results)
}

// Apply ranks the given inputs and replaces the rankings snapshot.
func (e *Engine) Apply(ctx context.Context, catalog []domain.CatalogEntry, results []domain.BenchmarkResult) ([]domain.RankedModel, error) {
	ranked := Rank(catalog, results)
	if err := e.repo.Rankings().Replace(ctx, ranked); err != nil {
		return nil, fmt.Errorf("failed to persist rankings: %w", err)
	}

	fields := []zap.Field{zap.Int("ranked", len(ranked)), zap.Int("benchmarked", len(results))}
	if len(ranked) > 0 {
		fields = append(fields, zap.String("top", ranked[0].Provider+"/"+ranked[0].ModelID))
	}
	e.logger.Info("Rankings recalculated", fields...)
	return ranked, nil
}
