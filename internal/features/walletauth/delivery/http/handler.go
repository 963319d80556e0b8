package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/features/walletauth/models"
	"airdrop-auth-backend/internal/features/walletauth/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(service *service.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	wallet := router.Group("/auth/wallet")
	{
		wallet.POST("/login", h.Login)
	}
}

// @Summary Wallet login
// @Description Verify a signature over the fixed challenge message and issue a session
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Signed challenge"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Signature rejected"
// @Router /auth/wallet/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError("address, signature and chainId are required"))
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Address, req.Signature, req.ChainID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		UserID:       session.User.ID,
		Address:      session.User.Address,
	})
}
