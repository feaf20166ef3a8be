package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-radar/internal/core/domain"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error attached by a handler as an RFC 9457 problem.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		problem := domain.ToProblem(err)

		// internal causes stay in the logs
		if problem.Log != nil {
			logger.Error("Request failed",
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", problem.Status),
				zap.Error(problem.Log),
			)
		}

		if problem.Instance == "" {
			problem.Instance = c.Request.URL.Path
		}

		c.Header("Content-Type", "application/problem+json")
		c.JSON(problem.Status, problem)
		c.Abort()
	}
}
