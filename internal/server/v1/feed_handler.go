package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/nulzo/model-radar/pkg/api"
	"go.uber.org/zap"
)

// HandleGetFeed serves the live intelligence feed built from the stored rankings.
//
// GET /v1/feed
func (h *Handler) HandleGetFeed(c *gin.Context) {
	ctx := c.Request.Context()
	info, err := h.repo.Snapshot(ctx, domain.SnapshotRankings)
	if err != nil {
		_ = c.Error(err)
		return
	}

	key := fmt.Sprintf("feed:%d", info.GeneratedAt.UnixNano())
	if h.cache != nil {
		var cached api.Feed
		err := h.cache.Get(ctx, key, &cached)
		if err == nil {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, &cached)
			return
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			h.logger.Warn("Feed cache read failed", zap.Error(err))
		}
	}

	var runID string
	if run, err := h.repo.Runs().Latest(ctx); err == nil && run != nil {
		runID = run.ID
	}

	f, err := h.feed.Generate(ctx, runID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, f, h.cacheTTL); err != nil {
			h.logger.Warn("Feed cache write failed", zap.Error(err))
		}
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, f)
}
