package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/common/middleware"
	"airdrop-auth-backend/internal/features/mintsign/models"
	"airdrop-auth-backend/internal/features/mintsign/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(service *service.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the mint endpoint. The caller must pass the auth
// middleware; the route is never reachable without a session.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	mint := router.Group("/mint", requireAuth)
	{
		mint.POST("/signature", h.Sign)
	}
}

// @Summary Mint authorization signature
// @Description Sign a single-use mint authorization for the caller's wallet
// @Tags mint
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SignRequest true "Wallet and chain"
// @Success 200 {object} models.SignResponse
// @Router /mint/signature [post]
func (h *Handler) Sign(c *gin.Context) {
	var req models.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError("userAddress and chainId are required"))
		return
	}

	signature, err := h.service.Sign(
		c.Request.Context(),
		c.GetString(middleware.CtxUserID),
		c.GetString(middleware.CtxAddress),
		req.UserAddress,
		req.ChainID,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.SignResponse{Signature: signature})
}
