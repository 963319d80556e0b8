package repository

import (
	"context"

	"airdrop-auth-backend/internal/features/market/models"
)

// PriceRepository is the durable store for refreshed market prices.
type PriceRepository interface {
	Upsert(ctx context.Context, prices []models.Price) error
	List(ctx context.Context) ([]models.Price, error)
}

// PriceCache is the fast-path read cache in front of the repository.
// A miss returns (nil, nil).
type PriceCache interface {
	Set(ctx context.Context, prices []models.Price) error
	Get(ctx context.Context) ([]models.Price, error)
}
