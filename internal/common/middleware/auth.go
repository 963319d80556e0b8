package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	sessionservice "airdrop-auth-backend/internal/features/session/service"
)

// Context keys set by RequireAuth.
const (
	CtxUserID     = "user_id"
	CtxAddress    = "address"
	CtxTelegramID = "telegram_id"
	CtxClaims     = "claims"
)

// RequireAuth validates the bearer token and publishes the session claims
// into the gin context. Requests without a valid session never reach the
// handler.
func RequireAuth(sessions *sessionservice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := sessions.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxAddress, claims.Address)
		c.Set(CtxTelegramID, claims.TelegramID)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}
