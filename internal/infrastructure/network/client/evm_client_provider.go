package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"houses_market/internal/app/port"
	"houses_market/internal/domain/entity"

	"golang.org/x/sync/singleflight"
)

// DialFunc opens a client for one network. Replaced in tests.
type DialFunc func(ctx context.Context, netDef entity.NetworkDefinition, connectionTimeout, rpcCallTimeout time.Duration) (port.BlockchainClient, error)

// EVMClientProvider implements port.BlockchainClientProvider, caching one client per network name.
type EVMClientProvider struct {
	clients           map[string]port.BlockchainClient
	mu                sync.Mutex
	dials             singleflight.Group
	logger            port.Logger
	dial              DialFunc
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(connectionTimeout, rpcCallTimeout time.Duration, logger port.Logger) *EVMClientProvider {
	return NewEVMClientProviderWithDialer(NewEVMClient, connectionTimeout, rpcCallTimeout, logger)
}

// NewEVMClientProviderWithDialer is NewEVMClientProvider with a custom dialer.
func NewEVMClientProviderWithDialer(dial DialFunc, connectionTimeout, rpcCallTimeout time.Duration, logger port.Logger) *EVMClientProvider {
	return &EVMClientProvider{
		clients:           make(map[string]port.BlockchainClient),
		logger:            logger,
		dial:              dial,
		connectionTimeout: connectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
	}
}

// GetClient returns the cached client for the network, dialing it on first use.
// Concurrent callers for the same network share one dial; other networks are not blocked.
func (p *EVMClientProvider) GetClient(ctx context.Context, netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	if client, exists := p.cached(netDef.Name); exists {
		p.logger.Debug("Returning cached EVM client", "network", netDef.Name)
		return client, nil
	}

	v, err, _ := p.dials.Do(netDef.Name, func() (any, error) {
		if client, exists := p.cached(netDef.Name); exists {
			return client, nil
		}

		p.logger.Info("Creating new EVM client", "network", netDef.Name, "url", netDef.URL)
		newClient, err := p.dial(ctx, netDef, p.connectionTimeout, p.rpcCallTimeout)
		if err != nil {
			p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
			return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
		}

		p.mu.Lock()
		p.clients[netDef.Name] = newClient
		p.mu.Unlock()
		return newClient, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(port.BlockchainClient), nil
}

func (p *EVMClientProvider) cached(name string) (port.BlockchainClient, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	client, ok := p.clients[name]
	return client, ok
}

// Close closes every cached client.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, c := range p.clients {
		c.Close()
		delete(p.clients, name)
	}
}
