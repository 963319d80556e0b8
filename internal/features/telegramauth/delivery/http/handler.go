package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/common/logger"
	"airdrop-auth-backend/internal/features/telegramauth/models"
	"airdrop-auth-backend/internal/features/telegramauth/service"
	"airdrop-auth-backend/internal/platform/telegram"
)

type Handler struct {
	service       *service.Service
	webhookSecret string
}

func NewHandler(service *service.Service, webhookSecret string) *Handler {
	return &Handler{service: service, webhookSecret: webhookSecret}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth/telegram")
	{
		auth.POST("/request", h.RequestLogin)
		auth.POST("/verify", h.VerifyLogin)
		auth.POST("/miniapp", h.MiniAppLogin)
	}
}

// RegisterWebhook mounts the bot webhook outside the versioned API group,
// where the Bot API is pointed at.
func (h *Handler) RegisterWebhook(router *gin.Engine) {
	router.POST("/telegram/webhook", h.Webhook)
}

// @Summary Request Telegram login
// @Description Push a one-time login button to the user's Telegram chat
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RequestLoginRequest true "Telegram user id"
// @Success 200 {object} models.RequestLoginResponse
// @Router /auth/telegram/request [post]
func (h *Handler) RequestLogin(c *gin.Context) {
	var req models.RequestLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError("telegram_id is required"))
		return
	}
	if err := h.service.RequestLogin(c.Request.Context(), req.TelegramID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.RequestLoginResponse{Success: true})
}

// @Summary Verify Telegram login token
// @Description Exchange a one-time login token for a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.VerifyLoginRequest true "Raw token from the deep link"
// @Success 200 {object} sessionmodels.Session
// @Router /auth/telegram/verify [post]
func (h *Handler) VerifyLogin(c *gin.Context) {
	var req models.VerifyLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError("token is required"))
		return
	}
	session, err := h.service.CompleteLogin(c.Request.Context(), req.Token)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Summary Telegram Mini App login
// @Description Validate mini-app init data and issue a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.MiniAppLoginRequest true "Raw init data"
// @Success 200 {object} sessionmodels.Session
// @Router /auth/telegram/miniapp [post]
func (h *Handler) MiniAppLogin(c *gin.Context) {
	var req models.MiniAppLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError("init_data is required"))
		return
	}
	session, err := h.service.MiniAppLogin(c.Request.Context(), req.InitData)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Webhook receives bot updates. Always answers 200 once the secret checks
// out, otherwise the Bot API keeps redelivering the update.
func (h *Handler) Webhook(c *gin.Context) {
	if h.webhookSecret != "" {
		got := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
	}

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	if err := h.service.HandleUpdate(c.Request.Context(), &update); err != nil {
		logger.Warn().Err(err).Msg("webhook update handling failed")
	}
	c.JSON(http.StatusOK, gin.H{})
}
