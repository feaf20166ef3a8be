package server

import (
	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-radar/internal/server/middleware"
	v1 "github.com/nulzo/model-radar/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	healthHandler := v1.NewHealthHandler(s.deps.Repo)
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/ready", healthHandler.Ready)
	s.router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))

	opts := []v1.Option{v1.WithProviders(s.config.Providers)}
	if s.deps.Cache != nil {
		opts = append(opts, v1.WithCache(s.deps.Cache, s.config.Cache.TTL))
	}
	h := v1.NewHandler(s.logger, s.deps.Repo, s.deps.Pipeline, s.deps.Deals, s.deps.Feed, opts...)

	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)

	api := s.router.Group("/v1")
	api.Use(limiter.Middleware())
	{
		api.GET("/providers", h.HandleListProviders)
		api.GET("/catalog", h.HandleListCatalog)
		api.GET("/benchmarks", h.HandleListBenchmarks)
		api.GET("/rankings", h.HandleListRankings)
		api.GET("/deals", h.HandleListDeals)
		api.GET("/feed", h.HandleGetFeed)

		api.POST("/pipeline/runs", h.HandleTriggerRun)
		api.GET("/pipeline/runs/latest", h.HandleLatestRun)
	}
}
