package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/features/market/models"
	"airdrop-auth-backend/internal/features/market/repository/memory"
)

func newPriceAPI(t *testing.T, status int, body map[string]map[string]float64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("ids"))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRefreshStoresFetchedPrices(t *testing.T) {
	server := newPriceAPI(t, http.StatusOK, map[string]map[string]float64{
		"ethereum": {"usd": 2531.12},
		"optimism": {"usd": 1.41},
	})
	repo := memory.NewPriceRepository()
	svc := NewService(repo, nil, Config{
		APIBaseURL: server.URL,
		CoinIDs:    []string{"ethereum", "optimism"},
		VsCurrency: "usd",
	})

	count, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	prices, err := svc.Prices(context.Background())
	require.NoError(t, err)
	require.Len(t, prices, 2)
	byCoin := map[string]models.Price{}
	for _, p := range prices {
		byCoin[p.CoinID] = p
	}
	assert.Equal(t, 2531.12, byCoin["ethereum"].Price)
	assert.Equal(t, "usd", byCoin["ethereum"].Currency)
	assert.False(t, byCoin["optimism"].UpdatedAt.IsZero())
}

func TestRefreshUpstreamFailure(t *testing.T) {
	server := newPriceAPI(t, http.StatusInternalServerError, nil)
	svc := NewService(memory.NewPriceRepository(), nil, Config{
		APIBaseURL: server.URL,
		CoinIDs:    []string{"ethereum"},
		VsCurrency: "usd",
	})

	_, err := svc.Refresh(context.Background())
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUpstream, appErr.Code)
}

func TestRefreshEmptyResponse(t *testing.T) {
	server := newPriceAPI(t, http.StatusOK, map[string]map[string]float64{
		"ethereum": {"eur": 2310.55}, // wrong currency only
	})
	svc := NewService(memory.NewPriceRepository(), nil, Config{
		APIBaseURL: server.URL,
		CoinIDs:    []string{"ethereum"},
		VsCurrency: "usd",
	})

	_, err := svc.Refresh(context.Background())
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUpstream, appErr.Code)
}

func TestRefreshWithoutCoins(t *testing.T) {
	svc := NewService(memory.NewPriceRepository(), nil, Config{VsCurrency: "usd"})

	_, err := svc.Refresh(context.Background())
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConfiguration, appErr.Code)
}

// stubCache counts hits so cache-first reads are observable.
type stubCache struct {
	mu     sync.Mutex
	prices []models.Price
	gets   int
}

func (c *stubCache) Set(_ context.Context, prices []models.Price) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices = prices
	return nil
}

func (c *stubCache) Get(_ context.Context) ([]models.Price, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.prices, nil
}

func TestPricesCacheFirst(t *testing.T) {
	server := newPriceAPI(t, http.StatusOK, map[string]map[string]float64{
		"ethereum": {"usd": 2531.12},
	})
	repo := memory.NewPriceRepository()
	cache := &stubCache{}
	svc := NewService(repo, cache, Config{
		APIBaseURL: server.URL,
		CoinIDs:    []string{"ethereum"},
		VsCurrency: "usd",
	})

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cache.prices)

	prices, err := svc.Prices(context.Background())
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, 1, cache.gets)
}
