package repository

import "context"

// NonceStore reads the current mint nonce for a user on a chain. The nonce
// is advanced only by contract-confirmed mints written back by the chain
// indexer, never by this service. A user with no nonce row yet reads as 0.
type NonceStore interface {
	Get(ctx context.Context, userID string, chainID int64) (uint64, error)
}
