package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airdrop-auth-backend/internal/common/middleware"
	sessionmemory "airdrop-auth-backend/internal/features/session/repository/memory"
	sessionservice "airdrop-auth-backend/internal/features/session/service"
	usermemory "airdrop-auth-backend/internal/features/user/repository/memory"
	userservice "airdrop-auth-backend/internal/features/user/service"
	"airdrop-auth-backend/internal/features/walletauth/models"
	"airdrop-auth-backend/internal/features/walletauth/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := userservice.NewService(usermemory.NewRepository())
	sessions, err := sessionservice.NewService(users, sessionmemory.NewRefreshStore(), sessionservice.Config{
		JWTSecret:       "test-jwt-secret",
		TokenHashSecret: "test-hash-secret",
		WalletTTL:       24 * time.Hour,
		TelegramTTL:     time.Hour,
		RefreshTTL:      720 * time.Hour,
	})
	require.NoError(t, err)

	svc := service.NewService(users, sessions, func(context.Context, int64) (service.ContractBackend, error) {
		return nil, errors.New("no rpc configured")
	})

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func postLogin(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/wallet/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()
	msg := []byte(service.LoginChallenge)
	digest := crypto.Keccak256(
		[]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))),
		msg,
	)
	sig, err := crypto.Sign(digest, key)
	require.NoError(t, err)
	sig[64] += 27

	rec := postLogin(t, router, models.LoginRequest{
		Address:   address,
		Signature: hexutil.Encode(sig),
		ChainID:   10,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.UserID)
	assert.Equal(t, strings.ToLower(address), resp.Address)
}

func TestLoginEndpointRejectsBadSignature(t *testing.T) {
	router := newTestRouter(t)

	rec := postLogin(t, router, models.LoginRequest{
		Address:   "0x8ba1f109551bD432803012645Ac136ddd64DBa72",
		Signature: "0x" + strings.Repeat("ab", 65),
		ChainID:   10,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestLoginEndpointValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := postLogin(t, router, map[string]any{"address": "0xabc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
