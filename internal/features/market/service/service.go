package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/common/logger"
	"airdrop-auth-backend/internal/features/market/models"
	"airdrop-auth-backend/internal/features/market/repository"
)

type Config struct {
	APIBaseURL string
	CoinIDs    []string
	VsCurrency string
}

// Service refreshes cached market prices from the external price API and
// serves them cache-first. The cache may be nil in deployments without
// Redis; reads then fall through to the repository.
type Service struct {
	httpClient *http.Client
	repo       repository.PriceRepository
	cache      repository.PriceCache
	baseURL    string
	coinIDs    []string
	vsCurrency string
	clock      func() time.Time
}

func NewService(repo repository.PriceRepository, cache repository.PriceCache, cfg Config) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		repo:       repo,
		cache:      cache,
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		coinIDs:    cfg.CoinIDs,
		vsCurrency: cfg.VsCurrency,
		clock:      time.Now,
	}
}

// Refresh pulls current prices for the configured coins and writes them
// through to the store and the cache. Returns the number of updated coins.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	if len(s.coinIDs) == 0 {
		return 0, apperrors.NewConfigurationError("MARKET_COIN_IDS is empty")
	}

	fetched, err := s.fetch(ctx)
	if err != nil {
		return 0, apperrors.NewUpstreamError("market data API", err)
	}

	now := s.clock()
	prices := make([]models.Price, 0, len(fetched))
	for coinID, quotes := range fetched {
		value, ok := quotes[s.vsCurrency]
		if !ok {
			continue
		}
		prices = append(prices, models.Price{
			CoinID:    coinID,
			Currency:  s.vsCurrency,
			Price:     value,
			UpdatedAt: now,
		})
	}
	if len(prices) == 0 {
		return 0, apperrors.NewUpstreamError("market data API", fmt.Errorf("no quotes in response"))
	}

	if err := s.repo.Upsert(ctx, prices); err != nil {
		return 0, apperrors.NewDatabaseError("upsert prices", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, prices); err != nil {
			logger.Warn().Err(err).Msg("price cache write failed")
		}
	}
	return len(prices), nil
}

// Prices serves the cached prices, falling back to the repository and
// repopulating the cache on a miss.
func (s *Service) Prices(ctx context.Context) ([]models.Price, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			logger.Warn().Err(err).Msg("price cache read failed")
		}
	}

	prices, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list prices", err)
	}
	if s.cache != nil && len(prices) > 0 {
		if err := s.cache.Set(ctx, prices); err != nil {
			logger.Warn().Err(err).Msg("price cache write failed")
		}
	}
	return prices, nil
}

func (s *Service) fetch(ctx context.Context) (map[string]map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		s.baseURL,
		url.QueryEscape(strings.Join(s.coinIDs, ",")),
		url.QueryEscape(s.vsCurrency),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}
	return out, nil
}
