package http

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/features/market/service"
)

type Handler struct {
	service       *service.Service
	refreshSecret string
}

func NewHandler(service *service.Service, refreshSecret string) *Handler {
	return &Handler{service: service, refreshSecret: refreshSecret}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	market := router.Group("/market")
	{
		market.POST("/refresh", h.Refresh)
		market.GET("/prices", h.Prices)
	}
}

// @Summary Refresh market prices
// @Description Pull current prices from the market data provider, cron/admin triggered
// @Tags market
// @Produce json
// @Success 200 {object} map[string]any
// @Router /market/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	if h.refreshSecret == "" {
		_ = c.Error(apperrors.NewConfigurationError("CRON_SECRET is not set"))
		return
	}
	got := c.GetHeader("X-Cron-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.refreshSecret)) != 1 {
		_ = c.Error(apperrors.NewUnauthorizedError("invalid refresh secret"))
		return
	}

	count, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("updated %d prices", count),
	})
}

// @Summary Cached market prices
// @Tags market
// @Produce json
// @Success 200 {object} map[string]any
// @Router /market/prices [get]
func (h *Handler) Prices(c *gin.Context) {
	prices, err := h.service.Prices(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prices": prices})
}
