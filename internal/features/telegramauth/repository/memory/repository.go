package memory

import (
	"context"
	"sync"
	"time"

	"airdrop-auth-backend/internal/features/telegramauth/models"
	"airdrop-auth-backend/internal/features/telegramauth/repository"
)

// TokenStore is an in-memory TokenStore for tests, with an injectable clock
// for retention checks.
type TokenStore struct {
	mu      sync.Mutex
	records map[string]entry
	Clock   func() time.Time
}

type entry struct {
	record    models.TokenRecord
	retainTil time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		records: make(map[string]entry),
		Clock:   time.Now,
	}
}

func (r *TokenStore) Save(_ context.Context, tokenHash string, record *models.TokenRecord, retention time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[tokenHash] = entry{record: *record, retainTil: r.Clock().Add(retention)}
	return nil
}

func (r *TokenStore) Consume(_ context.Context, tokenHash string) (*models.TokenRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.records[tokenHash]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	delete(r.records, tokenHash)
	if r.Clock().After(e.retainTil) {
		return nil, repository.ErrTokenNotFound
	}
	record := e.record
	return &record, nil
}

// Len reports the number of live records.
func (r *TokenStore) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
