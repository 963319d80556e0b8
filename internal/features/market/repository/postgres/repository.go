package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"airdrop-auth-backend/internal/features/market/models"
	"airdrop-auth-backend/internal/features/market/repository"
)

type priceRepository struct {
	db *sql.DB
}

func NewPriceRepository(db *sql.DB) repository.PriceRepository {
	return &priceRepository{db: db}
}

func (r *priceRepository) Upsert(ctx context.Context, prices []models.Price) error {
	query := `
		INSERT INTO market_prices (coin_id, currency, price, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (coin_id, currency) DO UPDATE SET
			price = EXCLUDED.price,
			updated_at = EXCLUDED.updated_at
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin price upsert: %w", err)
	}
	defer tx.Rollback()

	for _, p := range prices {
		if _, err := tx.ExecContext(ctx, query, p.CoinID, p.Currency, p.Price, p.UpdatedAt); err != nil {
			return fmt.Errorf("upsert price %s: %w", p.CoinID, err)
		}
	}
	return tx.Commit()
}

func (r *priceRepository) List(ctx context.Context) ([]models.Price, error) {
	query := `
		SELECT coin_id, currency, price, updated_at
		FROM market_prices
		ORDER BY coin_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer rows.Close()

	var prices []models.Price
	for rows.Next() {
		var p models.Price
		if err := rows.Scan(&p.CoinID, &p.Currency, &p.Price, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}
