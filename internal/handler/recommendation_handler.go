package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/stock-advisor/internal/model"
	"github.com/fleveque/stock-advisor/internal/service"
)

// RecommendationHandler serves the cached recommendation set.
type RecommendationHandler struct {
	cache  *service.Cache
	logger *zap.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(cache *service.Cache, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		cache:  cache,
		logger: logger,
	}
}

// GetRecommendations serves the current top picks as a JSON array of 0-3
// records. Route: GET /recommendations
//
// The pipeline below never returns an error — degraded upstreams produce a
// degraded or fallback result, not a failure. The recover here is a final
// backstop only: if something still panics, the client gets 500 with an
// empty array rather than an error payload.
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("recommendations endpoint panicked",
				zap.Any("panic", r),
			)
			c.JSON(http.StatusInternalServerError, []model.Recommendation{})
		}
	}()

	recs := h.cache.Get(c.Request.Context())
	c.JSON(http.StatusOK, recs)
}
