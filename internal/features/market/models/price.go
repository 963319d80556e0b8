package models

import "time"

// Price is one cached spot price from the market data provider.
type Price struct {
	CoinID    string    `json:"coin_id"`
	Currency  string    `json:"currency"`
	Price     float64   `json:"price"`
	UpdatedAt time.Time `json:"updated_at"`
}
