package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"airdrop-auth-backend/internal/features/mintsign/repository"
)

type nonceStore struct {
	db *sql.DB
}

func NewNonceStore(db *sql.DB) repository.NonceStore {
	return &nonceStore{db: db}
}

func (r *nonceStore) Get(ctx context.Context, userID string, chainID int64) (uint64, error) {
	query := `SELECT nonce FROM mint_nonces WHERE user_id = $1 AND chain_id = $2`

	var nonce uint64
	err := r.db.QueryRowContext(ctx, query, userID, chainID).Scan(&nonce)
	if errors.Is(err, sql.ErrNoRows) {
		// First mint for this identity on this chain.
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read mint nonce: %w", err)
	}
	return nonce, nil
}
