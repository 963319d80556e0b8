package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"airdrop-auth-backend/internal/features/telegramauth/models"
	"airdrop-auth-backend/internal/features/telegramauth/repository"
)

const keyPrefixLoginToken = "login_token:"

type tokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) repository.TokenStore {
	return &tokenStore{client: client}
}

func (r *tokenStore) Save(ctx context.Context, tokenHash string, record *models.TokenRecord, retention time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal token record: %w", err)
	}
	return r.client.Set(ctx, keyPrefixLoginToken+tokenHash, data, retention).Err()
}

// Consume is a single GETDEL round trip. Atomic delete-on-read is what
// keeps a token consumable at most once under concurrent attempts.
func (r *tokenStore) Consume(ctx context.Context, tokenHash string) (*models.TokenRecord, error) {
	data, err := r.client.GetDel(ctx, keyPrefixLoginToken+tokenHash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}

	var record models.TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token record: %w", err)
	}
	return &record, nil
}
