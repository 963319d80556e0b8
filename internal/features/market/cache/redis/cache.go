package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"airdrop-auth-backend/internal/features/market/models"
	"airdrop-auth-backend/internal/features/market/repository"
)

const (
	keyPrices       = "market:prices"
	priceExpiration = 5 * time.Minute
)

type priceCache struct {
	client *redis.Client
}

func NewPriceCache(client *redis.Client) repository.PriceCache {
	return &priceCache{client: client}
}

func (c *priceCache) Set(ctx context.Context, prices []models.Price) error {
	data, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("failed to marshal prices: %w", err)
	}
	return c.client.Set(ctx, keyPrices, data, priceExpiration).Err()
}

func (c *priceCache) Get(ctx context.Context) ([]models.Price, error) {
	data, err := c.client.Get(ctx, keyPrices).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached prices: %w", err)
	}

	var prices []models.Price
	if err := json.Unmarshal(data, &prices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached prices: %w", err)
	}
	return prices, nil
}
