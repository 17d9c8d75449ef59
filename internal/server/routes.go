// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/stock-advisor/internal/config"
	"github.com/fleveque/stock-advisor/internal/handler"
	"github.com/fleveque/stock-advisor/internal/middleware"
	"github.com/fleveque/stock-advisor/internal/service"
	"github.com/fleveque/stock-advisor/internal/storage"
)

// Deps bundles the dependencies the route handlers need. Dependencies are
// passed explicitly — no DI container, no magic.
type Deps struct {
	Cache       *service.Cache
	LLMCallRepo storage.LLMCallRepository
	RefreshRepo storage.RefreshRepository
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler()
	recommendationHandler := handler.NewRecommendationHandler(deps.Cache, logger)
	statsHandler := handler.NewStatsHandler(deps.LLMCallRepo, deps.RefreshRepo, deps.Cache, logger)

	// Public endpoint (no middleware)
	r.GET("/healthz", healthHandler.Healthz)

	// Routes match the dashboard frontend's expectations, so no /api prefix.
	api := r.Group("")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	api.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		api.GET("/recommendations", recommendationHandler.GetRecommendations)
		api.GET("/stats", statsHandler.Stats)
	}
}
