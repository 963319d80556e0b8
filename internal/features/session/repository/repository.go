package repository

import (
	"context"
	"errors"
	"time"

	"airdrop-auth-backend/internal/features/session/models"
)

var ErrGrantNotFound = errors.New("refresh grant not found")

// RefreshStore persists refresh grants keyed by token hash. Consume is
// destructive: a grant can be redeemed at most once, rotation issues a new
// one.
type RefreshStore interface {
	Save(ctx context.Context, tokenHash string, grant *models.RefreshGrant, ttl time.Duration) error
	Consume(ctx context.Context, tokenHash string) (*models.RefreshGrant, error)
}
