package memory

import (
	"context"
	"sync"
	"time"

	"airdrop-auth-backend/internal/features/session/models"
	"airdrop-auth-backend/internal/features/session/repository"
)

// RefreshStore is an in-memory RefreshStore for tests.
type RefreshStore struct {
	mu     sync.Mutex
	grants map[string]entry
	Clock  func() time.Time
}

type entry struct {
	grant     models.RefreshGrant
	expiresAt time.Time
}

func NewRefreshStore() *RefreshStore {
	return &RefreshStore{
		grants: make(map[string]entry),
		Clock:  time.Now,
	}
}

func (r *RefreshStore) Save(_ context.Context, tokenHash string, grant *models.RefreshGrant, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants[tokenHash] = entry{grant: *grant, expiresAt: r.Clock().Add(ttl)}
	return nil
}

func (r *RefreshStore) Consume(_ context.Context, tokenHash string) (*models.RefreshGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.grants[tokenHash]
	if !ok {
		return nil, repository.ErrGrantNotFound
	}
	delete(r.grants, tokenHash)
	if r.Clock().After(e.expiresAt) {
		return nil, repository.ErrGrantNotFound
	}
	grant := e.grant
	return &grant, nil
}
