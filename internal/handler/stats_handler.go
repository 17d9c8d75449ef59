package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/stock-advisor/internal/service"
	"github.com/fleveque/stock-advisor/internal/storage"
)

// StatsHandler exposes operational counters: LLM call totals, refresh
// cycles, and the current cache age.
type StatsHandler struct {
	llmCallRepo storage.LLMCallRepository
	refreshRepo storage.RefreshRepository
	cache       *service.Cache
	logger      *zap.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(
	llmCallRepo storage.LLMCallRepository,
	refreshRepo storage.RefreshRepository,
	cache *service.Cache,
	logger *zap.Logger,
) *StatsHandler {
	return &StatsHandler{
		llmCallRepo: llmCallRepo,
		refreshRepo: refreshRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Stats returns service statistics. Route: GET /stats
func (h *StatsHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	totalCalls, err := h.llmCallRepo.Count(ctx)
	if err != nil {
		h.logger.Error("counting llm calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	successfulCalls, err := h.llmCallRepo.CountSuccessful(ctx)
	if err != nil {
		h.logger.Error("counting successful llm calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	refreshes, err := h.refreshRepo.Count(ctx)
	if err != nil {
		h.logger.Error("counting refreshes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	fallbacks, err := h.refreshRepo.CountFallback(ctx)
	if err != nil {
		h.logger.Error("counting fallback refreshes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	lastRefresh, err := h.refreshRepo.LastRefreshAt(ctx)
	if err != nil {
		h.logger.Error("getting last refresh time", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	stats := gin.H{
		"llm_calls":            totalCalls,
		"llm_calls_successful": successfulCalls,
		"refreshes":            refreshes,
		"refreshes_fallback":   fallbacks,
	}
	if lastRefresh != nil {
		stats["last_refresh_at"] = lastRefresh
	}

	if age, ok := h.cache.Age(); ok {
		stats["cache_age_seconds"] = int64(age.Seconds())
	}

	c.JSON(http.StatusOK, stats)
}
