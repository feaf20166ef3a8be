package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/pkg/api"
)

// HandleListCatalog returns the catalog snapshot in catalog order.
//
// GET /v1/catalog
func (h *Handler) HandleListCatalog(c *gin.Context) {
	ctx := c.Request.Context()
	info, err := h.repo.Snapshot(ctx, domain.SnapshotCatalog)
	if err != nil {
		_ = c.Error(err)
		return
	}

	entries, err := h.repo.Catalog().List(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, api.ListResponse[domain.CatalogEntry]{
		Object:      "list",
		Data:        entries,
		GeneratedAt: info.GeneratedAt,
	})
}

// GET /v1/benchmarks
func (h *Handler) HandleListBenchmarks(c *gin.Context) {
	ctx := c.Request.Context()
	info, err := h.repo.Snapshot(ctx, domain.SnapshotBenchmarks)
	if err != nil {
		_ = c.Error(err)
		return
	}

	results, err := h.repo.Benchmarks().List(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, api.ListResponse[domain.BenchmarkResult]{
		Object:      "list",
		Data:        results,
		GeneratedAt: info.GeneratedAt,
	})
}

// HandleListRankings returns the ranked models, best value first.
//
// GET /v1/rankings?limit=N
func (h *Handler) HandleListRankings(c *gin.Context) {
	var q api.RankingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(domain.ValidationError(domain.ParseValidationError(err)))
		return
	}

	ctx := c.Request.Context()
	info, err := h.repo.Snapshot(ctx, domain.SnapshotRankings)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ranked, err := h.repo.Rankings().List(ctx, q.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, api.ListResponse[domain.RankedModel]{
		Object:      "list",
		Data:        ranked,
		GeneratedAt: info.GeneratedAt,
	})
}

// GET /v1/deals
func (h *Handler) HandleListDeals(c *gin.Context) {
	deals, err := h.deals.DetectFromStore(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, api.DealsResponse{
		Thresholds: h.deals.Thresholds(),
		Deals:      deals,
	})
}

// HandleListProviders reports the configured providers without their keys.
//
// GET /v1/providers
func (h *Handler) HandleListProviders(c *gin.Context) {
	out := make([]api.ProviderInfo, 0, len(h.providers))
	for _, p := range h.providers {
		suggested := p.ModelsSuggested
		if suggested == nil {
			suggested = []string{}
		}
		out = append(out, api.ProviderInfo{
			Name:            p.Name,
			Type:            p.Type,
			APIBase:         p.APIBase,
			Local:           p.IsLocal(),
			HasKey:          p.HasKey(),
			ModelsSuggested: suggested,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   out,
	})
}
