package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/store"
)

type HealthHandler struct {
	startTime time.Time
	repo      store.Repository
}

func NewHealthHandler(repo store.Repository) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		repo:      repo,
	}
}

// Health returns the health status and uptime of the API.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.startTime).String(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready reports 503 until a rankings snapshot exists.
func (h *HealthHandler) Ready(c *gin.Context) {
	info, err := h.repo.Snapshot(c.Request.Context(), domain.SnapshotRankings)
	switch {
	case errors.Is(err, domain.ErrPrerequisiteMissing):
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "waiting for first pipeline run"})
		return
	case err != nil:
		_ = c.Error(domain.InternalError("Snapshot lookup failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ready",
		"rankings_at":  info.GeneratedAt.UTC().Format(time.RFC3339),
		"ranked_count": info.RowCount,
	})
}
