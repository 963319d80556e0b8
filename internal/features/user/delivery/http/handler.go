package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/common/middleware"
	"airdrop-auth-backend/internal/features/user/models"
	"airdrop-auth-backend/internal/features/user/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(service *service.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	users := router.Group("/users", requireAuth)
	{
		users.GET("/me", h.Me)
		users.PATCH("/me", h.UpdateMe)
	}
}

// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.GetByID(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param update body models.ProfileUpdate true "Fields to change"
// @Success 200 {object} models.User
// @Router /users/me [patch]
func (h *Handler) UpdateMe(c *gin.Context) {
	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		_ = c.Error(apperrors.NewValidationError("invalid profile payload"))
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserID), &update)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
