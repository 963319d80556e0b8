package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airdrop-auth-backend/internal/common/middleware"
	sessionmemory "airdrop-auth-backend/internal/features/session/repository/memory"
	sessionservice "airdrop-auth-backend/internal/features/session/service"
	"airdrop-auth-backend/internal/features/telegramauth/repository/memory"
	"airdrop-auth-backend/internal/features/telegramauth/service"
	usermemory "airdrop-auth-backend/internal/features/user/repository/memory"
	userservice "airdrop-auth-backend/internal/features/user/service"
	"airdrop-auth-backend/internal/platform/telegram"
)

const webhookSecret = "hook-secret"

func newWebhookRouter(t *testing.T) (*gin.Engine, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sendCalls := new(int)
	botAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			*sendCalls++
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{}})
	}))
	t.Cleanup(botAPI.Close)

	users := userservice.NewService(usermemory.NewRepository())
	sessions, err := sessionservice.NewService(users, sessionmemory.NewRefreshStore(), sessionservice.Config{
		JWTSecret:       "test-jwt-secret",
		TokenHashSecret: "test-hash-secret",
		WalletTTL:       24 * time.Hour,
		TelegramTTL:     time.Hour,
		RefreshTTL:      720 * time.Hour,
	})
	require.NoError(t, err)

	svc := service.NewService(
		memory.NewTokenStore(),
		users,
		sessions,
		telegram.NewClient("123:fake-token", telegram.WithBaseURL(botAPI.URL)),
		service.Config{
			BotToken:        "123:fake-token",
			SiteURL:         "https://app.example.com",
			TokenTTL:        5 * time.Minute,
			TokenHashSecret: "test-hash-secret",
		},
	)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	NewHandler(svc, webhookSecret).RegisterWebhook(router)
	return router, sendCalls
}

func postWebhook(router *gin.Engine, secret string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookStartCommand(t *testing.T) {
	router, sendCalls := newWebhookRouter(t)

	update := telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			From: &telegram.User{ID: 555},
			Chat: telegram.Chat{ID: 555, Type: "private"},
			Text: "/start",
		},
	}
	rec := postWebhook(router, webhookSecret, update)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *sendCalls)
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	router, sendCalls := newWebhookRouter(t)

	rec := postWebhook(router, "wrong", telegram.Update{UpdateID: 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postWebhook(router, "", telegram.Update{UpdateID: 2})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, *sendCalls)
}

func TestWebhookSwallowsMalformedBody(t *testing.T) {
	router, _ := newWebhookRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("not json"))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", webhookSecret)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
