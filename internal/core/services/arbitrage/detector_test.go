package arbitrage

import (
	"context"
	"testing"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/services/ranking"
	"github.com/nulzo/model-radar/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ids(models []domain.RankedModel) []string {
	out := []string{}
	for _, m := range models {
		out = append(out, m.ModelID)
	}
	return out
}

func TestDetect_ValueKingCeiling(t *testing.T) {
	m := domain.RankedModel{ModelID: "m", Provider: "p", AvgPerf: 0.85, AvgCost: 0.3, AvgSpeed: 10}

	deals := Detect([]domain.RankedModel{m}, Thresholds{PerformanceFloor: 0.8, ValueCostCeiling: 0.5, SpeedFloor: 100, SpeedCostCeiling: 0.1})
	assert.Equal(t, []string{"m"}, ids(deals[domain.ValueKing]))

	deals = Detect([]domain.RankedModel{m}, Thresholds{PerformanceFloor: 0.8, ValueCostCeiling: 0.2, SpeedFloor: 100, SpeedCostCeiling: 0.1})
	assert.Empty(t, deals[domain.ValueKing])
}

func TestDetect_BothCategoriesAndStrictBounds(t *testing.T) {
	ranked := []domain.RankedModel{
		{ModelID: "both", AvgPerf: 0.9, AvgCost: 0.065, AvgSpeed: 500},
		{ModelID: "fast-only", AvgPerf: 0.5, AvgCost: 0.2, AvgSpeed: 250},
		{ModelID: "on-the-floor", AvgPerf: 0.6, AvgCost: 1.0, AvgSpeed: 50},
		{ModelID: "pricey", AvgPerf: 0.95, AvgCost: 6.25, AvgSpeed: 83},
	}

	deals := Detect(ranked, DefaultThresholds())
	assert.Equal(t, []string{"both"}, ids(deals[domain.ValueKing]))
	assert.Equal(t, []string{"both", "fast-only"}, ids(deals[domain.SpeedDemon]))
}

func TestDetect_EmptyAlwaysHasBothKeys(t *testing.T) {
	deals := Detect(nil, DefaultThresholds())
	require.Contains(t, deals, domain.ValueKing)
	require.Contains(t, deals, domain.SpeedDemon)
	assert.Empty(t, deals[domain.ValueKing])
	assert.Empty(t, deals[domain.SpeedDemon])
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, Thresholds{0.6, 2.0, 50, 1.0}, DefaultThresholds())
	assert.Equal(t, Thresholds{0.8, 0.5, 100, 0.1}, FeedThresholds())
}

func TestDetectFromStore_CalculatesMissingRankings(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.Catalog().Replace(ctx, []domain.CatalogEntry{
		{Provider: "groq", ModelID: "llama-3.1-8b-instant", InputPrice: 0.05, OutputPrice: 0.08},
	}))
	require.NoError(t, repo.Benchmarks().Replace(ctx, []domain.BenchmarkResult{
		{Provider: "groq", ModelID: "llama-3.1-8b-instant", Scores: map[string]float64{"Math": 0.7}, AvgSpeed: 500},
	}))

	d := NewDetector(zap.NewNop(), repo, ranking.NewEngine(zap.NewNop(), repo), DefaultThresholds())
	deals, err := d.DetectFromStore(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"llama-3.1-8b-instant"}, ids(deals[domain.ValueKing]))
	assert.Equal(t, []string{"llama-3.1-8b-instant"}, ids(deals[domain.SpeedDemon]))

	// the recalculated rankings are persisted
	_, err = repo.Snapshot(ctx, domain.SnapshotRankings)
	assert.NoError(t, err)
}

func TestDetectFromStore_PropagatesPrerequisiteMissing(t *testing.T) {
	repo := memory.New()
	d := NewDetector(zap.NewNop(), repo, ranking.NewEngine(zap.NewNop(), repo), DefaultThresholds())

	_, err := d.DetectFromStore(context.Background())
	var pe *domain.PrerequisiteError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.SnapshotCatalog, pe.Snapshot)
}

func TestDetectFromStore_WithoutRankerNeverWrites(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.Catalog().Replace(ctx, []domain.CatalogEntry{
		{Provider: "groq", ModelID: "llama-3.1-8b-instant", InputPrice: 0.05, OutputPrice: 0.08},
	}))
	require.NoError(t, repo.Benchmarks().Replace(ctx, []domain.BenchmarkResult{
		{Provider: "groq", ModelID: "llama-3.1-8b-instant", Scores: map[string]float64{"Math": 0.7}, AvgSpeed: 500},
	}))

	d := NewDetector(zap.NewNop(), repo, nil, DefaultThresholds())
	_, err := d.DetectFromStore(ctx)
	var pe *domain.PrerequisiteError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.SnapshotRankings, pe.Snapshot)

	_, err = repo.Snapshot(ctx, domain.SnapshotRankings)
	assert.ErrorIs(t, err, domain.ErrPrerequisiteMissing)
}
