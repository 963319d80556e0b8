package ethrpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
)

// Pool hands out one lazily-dialed RPC client per configured chain id.
// Clients are cached for the life of the process.
type Pool struct {
	mu      sync.Mutex
	urls    map[int64]string
	clients map[int64]*ethclient.Client
}

func NewPool(urls map[int64]string) *Pool {
	return &Pool{
		urls:    urls,
		clients: make(map[int64]*ethclient.Client),
	}
}

// Client returns the RPC client for chainID, dialing on first use. An
// unconfigured chain id is an error, never a fallback to another chain.
func (p *Pool) Client(ctx context.Context, chainID int64) (*ethclient.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[chainID]; ok {
		return client, nil
	}
	rpcURL, ok := p.urls[chainID]
	if !ok {
		return nil, fmt.Errorf("no RPC endpoint configured for chain %d", chainID)
	}
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial chain %d: %w", chainID, err)
	}
	p.clients[chainID] = client
	return client, nil
}

func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, client := range p.clients {
		client.Close()
	}
	p.clients = make(map[int64]*ethclient.Client)
}
