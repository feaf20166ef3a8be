package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/nulzo/model-radar/internal/store"
	"github.com/nulzo/model-radar/internal/telemetry"
	"github.com/nulzo/model-radar/pkg/api"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds a single models listing call.
const DefaultTimeout = 10 * time.Second

const (
	reasonError = "error"
	reasonEmpty = "empty"
)

type Builder struct {
	logger    *zap.Logger
	repo      store.Repository
	providers []ports.ModelProvider
	prices    ports.PriceResolver
	metrics   *telemetry.Metrics
	timeout   time.Duration
}

type Option func(*Builder)

func WithTimeout(d time.Duration) Option {
	return func(b *Builder) {
		if d > 0 {
			b.timeout = d
		}
	}
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

func NewBuilder(logger *zap.Logger, repo store.Repository, providers []ports.ModelProvider, prices ports.PriceResolver, opts ...Option) *Builder {
	b := &Builder{
		logger:    logger,
		repo:      repo,
		providers: providers,
		prices:    prices,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build discovers every provider's models, prices them and replaces the catalog snapshot.
// An empty result leaves the previous snapshot untouched and returns domain.ErrNoArtifact.
func (b *Builder) Build(ctx context.Context) ([]domain.CatalogEntry, error) {
	entries, err := b.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog is empty: %w", domain.ErrNoArtifact)
	}

	if err := b.repo.Catalog().Replace(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to persist catalog: %w", err)
	}
	b.metrics.SetCatalogSize(len(entries))

	b.logger.Info("Catalog built", zap.Int("models_count", len(entries)), zap.Int("providers", len(b.providers)))
	return entries, nil
}

// Discover visits providers in order and returns the priced, deduplicated entries
// without persisting them.
func (b *Builder) Discover(ctx context.Context) ([]domain.CatalogEntry, error) {
	seen := make(map[domain.ModelKey]struct{})
	var entries []domain.CatalogEntry

	for _, p := range b.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, m := range b.listModels(ctx, p) {
			id := strings.TrimSpace(m.ID)
			if id == "" {
				continue
			}
			key := domain.ModelKey{Provider: p.Name(), ModelID: id}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			price := b.prices.Resolve(id)
			entries = append(entries, domain.CatalogEntry{
				Provider:    p.Name(),
				ModelID:     id,
				InputPrice:  price.Input,
				OutputPrice: price.Output,
				PriceSource: price.Source,
				Created:     m.Created,
				OwnedBy:     m.OwnedBy,
			})
		}
	}

	return entries, nil
}

// listModels returns the live models of p, or its suggested models when the live
// listing fails or is empty.
func (b *Builder) listModels(ctx context.Context, p ports.ModelProvider) []api.ModelDescriptor {
	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	live, err := p.Models(cctx)
	switch {
	case err != nil:
		b.logger.Warn("Model discovery failed, using suggested models",
			zap.String("provider", p.Name()), zap.Error(err))
		b.metrics.RecordFallback(p.Name(), reasonError)
	case len(live) == 0:
		b.logger.Warn("Provider listed no models, using suggested models",
			zap.String("provider", p.Name()))
		b.metrics.RecordFallback(p.Name(), reasonEmpty)
	default:
		b.logger.Debug("Discovered models", zap.String("provider", p.Name()), zap.Int("count", len(live)))
		return live
	}

	suggested := p.Descriptor().ModelsSuggested
	out := make([]api.ModelDescriptor, 0, len(suggested))
	for _, id := range suggested {
		out = append(out, api.ModelDescriptor{ID: id})
	}
	return out
}

// Export writes entries as a YAML document keyed by "models".
func Export(w io.Writer, entries []domain.CatalogEntry) error {
	wrapper := struct {
		GeneratedAt time.Time             `yaml:"generated_at"`
		Models      []domain.CatalogEntry `yaml:"models"`
	}{
		GeneratedAt: time.Now().UTC(),
		Models:      entries,
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(wrapper); err != nil {
		return err
	}
	return enc.Close()
}
