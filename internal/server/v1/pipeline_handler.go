package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/pkg/api"
	"go.uber.org/zap"
)

// HandleTriggerRun starts a pipeline run. By default the run continues in the
// background and 202 is returned; with ?wait=true the report is returned once
// the run finishes.
//
// POST /v1/pipeline/runs
func (h *Handler) HandleTriggerRun(c *gin.Context) {
	var q api.RunQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(domain.ValidationError(domain.ParseValidationError(err)))
		return
	}

	if !q.Wait {
		id, err := h.pipeline.Start(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		h.logger.Info("Pipeline run accepted", zap.String("run_id", id))
		c.Header("Location", "/v1/pipeline/runs/latest")
		c.JSON(http.StatusAccepted, api.RunAccepted{ID: id, Status: "accepted"})
		return
	}

	report, err := h.pipeline.Run(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /v1/pipeline/runs/latest
func (h *Handler) HandleLatestRun(c *gin.Context) {
	run, err := h.repo.Runs().Latest(c.Request.Context())
	if err != nil {
		_ = c.Error(domain.InternalError("Failed to load pipeline runs", err))
		return
	}
	if run == nil {
		_ = c.Error(domain.New(http.StatusNotFound, "Not Found", "no pipeline run has been recorded"))
		return
	}
	c.JSON(http.StatusOK, run)
}
