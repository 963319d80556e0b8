package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/common/logger"
)

// RequestID attaches an X-Request-ID to every request, generating one when
// the client did not supply it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorHandler converts errors pushed onto the gin context into the uniform
// { "error": message } JSON shape. Internal errors are logged with their
// cause and collapsed to a generic message for the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		appErr, ok := apperrors.AsAppError(err)
		if !ok {
			appErr = apperrors.Wrap(err, apperrors.ErrCodeInternal, "internal server error")
		}

		event := logger.Warn()
		if appErr.IsInternal() {
			event = logger.Error()
		}
		event.
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("code", string(appErr.Code)).
			Err(appErr).
			Msg("request failed")

		message := appErr.Message
		if appErr.IsInternal() {
			message = "internal server error"
		}
		c.AbortWithStatusJSON(httpStatus(appErr.Code), gin.H{"error": message})
	}
}

// Recovery turns panics into 500 responses without leaking the panic value.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

func httpStatus(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized, apperrors.ErrCodeInvalidSignature:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeTokenExpired:
		return http.StatusBadRequest
	case apperrors.ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
