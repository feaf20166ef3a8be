package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/services/arbitrage"
	"github.com/nulzo/model-radar/internal/store"
	"github.com/nulzo/model-radar/pkg/api"
	"go.uber.org/zap"
)

const DefaultTopN = 10

type Generator struct {
	logger     *zap.Logger
	repo       store.Repository
	thresholds arbitrage.Thresholds
	topN       int
	now        func() time.Time
}

func NewGenerator(logger *zap.Logger, repo store.Repository, t arbitrage.Thresholds, topN int) *Generator {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Generator{logger: logger, repo: repo, thresholds: t, topN: topN, now: time.Now}
}

// Generate builds the feed from the stored rankings. It never recalculates them.
func (g *Generator) Generate(ctx context.Context, runID string) (*api.Feed, error) {
	ranked, err := g.repo.Rankings().List(ctx, 0)
	if err != nil {
		return nil, err
	}

	deals := arbitrage.Detect(ranked, g.thresholds)
	top := ranked
	if len(top) > g.topN {
		top = top[:g.topN]
	}

	return &api.Feed{
		Metadata: api.FeedMetadata{
			GeneratedAt:        g.now().UTC(),
			TotalModelsScanned: len(ranked),
			RunID:              runID,
		},
		TopValueModels: top,
		ArbitrageAlerts: api.ArbitrageAlerts{
			ValueKings:  deals[domain.ValueKing],
			SpeedDemons: deals[domain.SpeedDemon],
		},
	}, nil
}

// Publish generates the feed and writes it to path.
func (g *Generator) Publish(ctx context.Context, path, runID string) (*api.Feed, error) {
	f, err := g.Generate(ctx, runID)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(path, f); err != nil {
		return nil, err
	}
	g.logger.Info("Feed published", zap.String("path", path), zap.Int("models", f.Metadata.TotalModelsScanned))
	return f, nil
}

// WriteFile writes the feed as indented JSON. The file is replaced by rename so
// readers see either the old or the new document.
func WriteFile(path string, f *api.Feed) error {
	data, err := json.MarshalIndent(f, "", "    ")
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create feed dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp feed: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close feed: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
