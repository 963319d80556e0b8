package repository

import (
	"context"
	"errors"
	"time"

	"airdrop-auth-backend/internal/features/telegramauth/models"
)

var ErrTokenNotFound = errors.New("login token not found")

// TokenStore persists one-time login tokens keyed by hash. Consume is
// destructive and at-most-once: the record is removed as part of the
// lookup, so a second Consume of the same hash reports ErrTokenNotFound.
//
// Retention is how long the record stays findable and must exceed the
// token's logical expiry: an expired-but-retained record lets the caller
// answer "expired" instead of "unknown".
type TokenStore interface {
	Save(ctx context.Context, tokenHash string, record *models.TokenRecord, retention time.Duration) error
	Consume(ctx context.Context, tokenHash string) (*models.TokenRecord, error)
}
