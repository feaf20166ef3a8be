package v1

import (
	"context"
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/nulzo/model-radar/internal/core/services/arbitrage"
	"github.com/nulzo/model-radar/internal/core/services/pipeline"
	"github.com/nulzo/model-radar/internal/store"
	"github.com/nulzo/model-radar/pkg/api"
	"go.uber.org/zap"
)

// PipelineService triggers runs of the pipeline.
type PipelineService interface {
	Run(ctx context.Context) (*pipeline.Report, error)
	Start(ctx context.Context) (string, error)
}

// DealFinder classifies the stored rankings.
type DealFinder interface {
	DetectFromStore(ctx context.Context) (domain.Deals, error)
	Thresholds() arbitrage.Thresholds
}

// FeedSource builds the live intelligence document.
type FeedSource interface {
	Generate(ctx context.Context, runID string) (*api.Feed, error)
}

// Handler groups the v1 endpoints that share dependencies.
type Handler struct {
	logger    *zap.Logger
	repo      store.Repository
	pipeline  PipelineService
	deals     DealFinder
	feed      FeedSource
	cache     ports.CacheService
	cacheTTL  time.Duration
	providers []domain.ProviderDescriptor
}

type Option func(*Handler)

// WithCache serves the feed through cache. Entries are keyed by the rankings
// snapshot timestamp, so a new run never serves a stale document.
func WithCache(cache ports.CacheService, ttl time.Duration) Option {
	return func(h *Handler) {
		h.cache = cache
		h.cacheTTL = ttl
	}
}

func WithProviders(descs []domain.ProviderDescriptor) Option {
	return func(h *Handler) { h.providers = descs }
}

func NewHandler(logger *zap.Logger, repo store.Repository, p PipelineService, d DealFinder, f FeedSource, opts ...Option) *Handler {
	h := &Handler{
		logger:   logger,
		repo:     repo,
		pipeline: p,
		deals:    d,
		feed:     f,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
