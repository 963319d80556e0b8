package memory

import (
	"context"
	"sync"

	"airdrop-auth-backend/internal/features/market/models"
)

// PriceRepository is an in-memory PriceRepository for tests.
type PriceRepository struct {
	mu     sync.Mutex
	prices map[string]models.Price
}

func NewPriceRepository() *PriceRepository {
	return &PriceRepository{prices: make(map[string]models.Price)}
}

func (r *PriceRepository) Upsert(_ context.Context, prices []models.Price) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range prices {
		r.prices[p.CoinID+":"+p.Currency] = p
	}
	return nil
}

func (r *PriceRepository) List(_ context.Context) ([]models.Price, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Price, 0, len(r.prices))
	for _, p := range r.prices {
		out = append(out, p)
	}
	return out, nil
}
