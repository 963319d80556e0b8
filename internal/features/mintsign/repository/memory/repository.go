package memory

import (
	"context"
	"fmt"
	"sync"
)

// NonceStore is an in-memory NonceStore for tests.
type NonceStore struct {
	mu     sync.Mutex
	nonces map[string]uint64
	reads  int
}

func NewNonceStore() *NonceStore {
	return &NonceStore{nonces: make(map[string]uint64)}
}

func (r *NonceStore) Get(_ context.Context, userID string, chainID int64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	return r.nonces[key(userID, chainID)], nil
}

// Set simulates a contract-confirmed mint bumping the nonce.
func (r *NonceStore) Set(userID string, chainID int64, nonce uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nonces[key(userID, chainID)] = nonce
}

// Reads reports how many Get calls were made.
func (r *NonceStore) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func key(userID string, chainID int64) string {
	return fmt.Sprintf("%s:%d", userID, chainID)
}
