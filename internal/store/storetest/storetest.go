// Package storetest holds a conformance suite every store.Repository must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises newRepo against the Repository contract.
func Run(t *testing.T, newRepo func(t *testing.T) store.Repository) {
	t.Run("AbsentSnapshots", func(t *testing.T) { testAbsent(t, newRepo(t)) })
	t.Run("CatalogRoundTrip", func(t *testing.T) { testCatalog(t, newRepo(t)) })
	t.Run("BenchmarksRoundTrip", func(t *testing.T) { testBenchmarks(t, newRepo(t)) })
	t.Run("RankingsLimit", func(t *testing.T) { testRankings(t, newRepo(t)) })
	t.Run("EmptySnapshotIsPresent", func(t *testing.T) { testEmpty(t, newRepo(t)) })
	t.Run("TxRollback", func(t *testing.T) { testRollback(t, newRepo(t)) })
	t.Run("RunsRetention", func(t *testing.T) { testRuns(t, newRepo(t)) })
}

func testAbsent(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	_, err := repo.Catalog().List(ctx)
	assertMissing(t, err, domain.SnapshotCatalog)

	_, err = repo.Benchmarks().List(ctx)
	assertMissing(t, err, domain.SnapshotBenchmarks)

	_, err = repo.Rankings().List(ctx, 0)
	assertMissing(t, err, domain.SnapshotRankings)

	_, err = repo.Snapshot(ctx, domain.SnapshotRankings)
	assertMissing(t, err, domain.SnapshotRankings)

	run, err := repo.Runs().Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, run)
}

func testCatalog(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	created := int64(1715367049)

	entries := []domain.CatalogEntry{
		{Provider: "openai", ModelID: "gpt-4o", InputPrice: 2.5, OutputPrice: 10, PriceSource: domain.PriceFromTable, Created: &created, OwnedBy: "system"},
		{Provider: "groq", ModelID: "llama-3.1-8b-instant", InputPrice: 0.05, OutputPrice: 0.08, PriceSource: domain.PriceFromTable},
		{Provider: "local", ModelID: "qwen2", InputPrice: 0.5, OutputPrice: 0.75, PriceSource: domain.PriceSynthetic},
	}
	require.NoError(t, repo.Catalog().Replace(ctx, entries))

	got, err := repo.Catalog().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	// full replacement, not a merge
	require.NoError(t, repo.Catalog().Replace(ctx, entries[1:2]))
	got, err = repo.Catalog().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries[1:2], got)

	info, err := repo.Snapshot(ctx, domain.SnapshotCatalog)
	require.NoError(t, err)
	assert.Equal(t, 1, info.RowCount)
	assert.WithinDuration(t, time.Now(), info.GeneratedAt, time.Minute)
}

func testBenchmarks(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	results := []domain.BenchmarkResult{
		{ModelID: "gpt-4o", Provider: "openai", Scores: map[string]float64{"Coding": 0.9, "Math": 0.87, "Reasoning": 0.91}, AvgSpeed: 83.3333, Mode: domain.ModeSimulated},
		{ModelID: "gpt-4o-mini", Provider: "openai", Scores: map[string]float64{}, AvgSpeed: 0, Mode: domain.ModeReal},
	}
	require.NoError(t, repo.Benchmarks().Replace(ctx, results))

	got, err := repo.Benchmarks().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, results, got)
}

func testRankings(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	ranked := []domain.RankedModel{
		{Rank: 1, ModelID: "a", Provider: "p", AvgPerf: 0.9, AvgCost: 0.1, ValueScore: 9, InputPrice: 0.1, OutputPrice: 0.1},
		{Rank: 2, ModelID: "b", Provider: "p", AvgPerf: 0.8, AvgCost: 0.2, ValueScore: 4, InputPrice: 0.2, OutputPrice: 0.2},
		{Rank: 3, ModelID: "c", Provider: "p", AvgPerf: 0.7, AvgCost: 0.7, ValueScore: 1, InputPrice: 0.7, OutputPrice: 0.7},
	}
	require.NoError(t, repo.Rankings().Replace(ctx, ranked))

	all, err := repo.Rankings().List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, ranked, all)

	top, err := repo.Rankings().List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, ranked[:2], top)
}

func testEmpty(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	require.NoError(t, repo.Rankings().Replace(ctx, nil))

	got, err := repo.Rankings().List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testRollback(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	before := []domain.CatalogEntry{{Provider: "openai", ModelID: "gpt-4o", InputPrice: 2.5, OutputPrice: 10, PriceSource: domain.PriceFromTable}}
	require.NoError(t, repo.Catalog().Replace(ctx, before))

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx store.Repository) error {
		if err := tx.Catalog().Replace(ctx, nil); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.Catalog().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, got)
}

func testRuns(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < store.RunRetention+5; i++ {
		run := &domain.RunRecord{
			ID:         fmt.Sprintf("run-%02d", i),
			Mode:       "strict",
			Stage:      domain.StageComplete,
			Status:     domain.RunSucceeded,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
		}
		require.NoError(t, repo.Runs().Record(ctx, run))
	}

	latest, err := repo.Runs().Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.StartedAt.Equal(base.Add(time.Duration(store.RunRetention+4)*time.Minute)))
	assert.Equal(t, domain.RunSucceeded, latest.Status)
}

func assertMissing(t *testing.T, err error, snapshot domain.Snapshot) {
	t.Helper()
	require.ErrorIs(t, err, domain.ErrPrerequisiteMissing)
	var pe *domain.PrerequisiteError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, snapshot, pe.Snapshot)
}
