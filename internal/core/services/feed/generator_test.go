package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/services/arbitrage"
	"github.com/nulzo/model-radar/internal/store/memory"
	"github.com/nulzo/model-radar/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedRankings(t *testing.T, repo *memory.Repository, n int) {
	t.Helper()
	ranked := make([]domain.RankedModel, 0, n)
	for i := 0; i < n; i++ {
		ranked = append(ranked, domain.RankedModel{
			Rank:     i + 1,
			ModelID:  fmt.Sprintf("m%02d", i),
			Provider: "p",
			AvgPerf:  0.9 - float64(i)*0.01,
			AvgCost:  0.05 + float64(i)*0.1,
			AvgSpeed: 300 - float64(i)*10,
		})
	}
	require.NoError(t, repo.Rankings().Replace(context.Background(), ranked))
}

func TestGenerate(t *testing.T) {
	repo := memory.New()
	seedRankings(t, repo, 15)

	g := NewGenerator(zap.NewNop(), repo, arbitrage.FeedThresholds(), 0)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	f, err := g.Generate(context.Background(), "run-1")
	require.NoError(t, err)

	assert.Equal(t, fixed, f.Metadata.GeneratedAt)
	assert.Equal(t, 15, f.Metadata.TotalModelsScanned)
	assert.Equal(t, "run-1", f.Metadata.RunID)
	require.Len(t, f.TopValueModels, DefaultTopN)
	assert.Equal(t, "m00", f.TopValueModels[0].ModelID)

	// perf > 0.8 and cost < 0.5: m00..m04
	assert.Len(t, f.ArbitrageAlerts.ValueKings, 5)
	// speed > 100 and cost < 0.1: only m00
	require.Len(t, f.ArbitrageAlerts.SpeedDemons, 1)
	assert.Equal(t, "m00", f.ArbitrageAlerts.SpeedDemons[0].ModelID)
}

func TestGenerate_MissingRankings(t *testing.T) {
	g := NewGenerator(zap.NewNop(), memory.New(), arbitrage.FeedThresholds(), 10)
	_, err := g.Generate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrPrerequisiteMissing)
}

func TestPublish_WritesAtomically(t *testing.T) {
	repo := memory.New()
	seedRankings(t, repo, 3)

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "live_intel.json")
	g := NewGenerator(zap.NewNop(), repo, arbitrage.FeedThresholds(), 10)

	_, err := g.Publish(context.Background(), path, "")
	require.NoError(t, err)

	// overwrite in place
	_, err = g.Publish(context.Background(), path, "second")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var f api.Feed
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, "second", f.Metadata.RunID)
	assert.Len(t, f.TopValueModels, 3)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "metadata")
	assert.Contains(t, raw, "top_value_models")
	assert.Contains(t, raw, "arbitrage_alerts")
}
