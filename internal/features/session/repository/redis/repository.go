package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"airdrop-auth-backend/internal/features/session/models"
	"airdrop-auth-backend/internal/features/session/repository"
)

const keyPrefixRefresh = "refresh_token:"

type refreshStore struct {
	client *redis.Client
}

func NewRefreshStore(client *redis.Client) repository.RefreshStore {
	return &refreshStore{client: client}
}

func (r *refreshStore) Save(ctx context.Context, tokenHash string, grant *models.RefreshGrant, ttl time.Duration) error {
	data, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh grant: %w", err)
	}
	return r.client.Set(ctx, keyPrefixRefresh+tokenHash, data, ttl).Err()
}

// Consume deletes and returns the grant in one round trip. GETDEL keeps the
// redeem-once property under concurrent refresh attempts.
func (r *refreshStore) Consume(ctx context.Context, tokenHash string) (*models.RefreshGrant, error) {
	data, err := r.client.GetDel(ctx, keyPrefixRefresh+tokenHash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrGrantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh grant: %w", err)
	}

	var grant models.RefreshGrant
	if err := json.Unmarshal(data, &grant); err != nil {
		return nil, fmt.Errorf("failed to unmarshal refresh grant: %w", err)
	}
	return &grant, nil
}
