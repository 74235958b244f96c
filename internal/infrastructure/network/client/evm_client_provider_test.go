package client

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"houses_market/internal/app/port"
	"houses_market/internal/domain/entity"
	"houses_market/internal/pkg/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	def    entity.NetworkDefinition
	closed atomic.Bool
}

func (s *stubClient) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, nil
}
func (s *stubClient) ChainID(context.Context) (*big.Int, error) { return big.NewInt(1337), nil }
func (s *stubClient) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return big.NewInt(0), nil
}
func (s *stubClient) Definition() entity.NetworkDefinition { return s.def }
func (s *stubClient) Close()                               { s.closed.Store(true) }

func TestEVMClientProvider_CachesPerNetwork(t *testing.T) {
	var dials atomic.Int32
	dial := func(_ context.Context, def entity.NetworkDefinition, _, _ time.Duration) (port.BlockchainClient, error) {
		dials.Add(1)
		return &stubClient{def: def}, nil
	}
	p := NewEVMClientProviderWithDialer(dial, time.Second, time.Second, logger.NewNop())
	ganache := entity.NetworkDefinition{Name: "ganache", URL: "http://127.0.0.1:7545"}

	first, err := p.GetClient(context.Background(), ganache)
	require.NoError(t, err)
	second, err := p.GetClient(context.Background(), ganache)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), dials.Load())

	_, err = p.GetClient(context.Background(), entity.NetworkDefinition{Name: "anvil", URL: "http://127.0.0.1:8545"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), dials.Load())

	p.Close()
	assert.True(t, first.(*stubClient).closed.Load())
}

func TestEVMClientProvider_SlowDialDoesNotBlockOtherNetworks(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var slowDials atomic.Int32
	dial := func(_ context.Context, def entity.NetworkDefinition, _, _ time.Duration) (port.BlockchainClient, error) {
		if def.Name == "slow" {
			if slowDials.Add(1) == 1 {
				close(started)
			}
			<-release
		}
		return &stubClient{def: def}, nil
	}
	p := NewEVMClientProviderWithDialer(dial, time.Second, time.Second, logger.NewNop())
	slow := entity.NetworkDefinition{Name: "slow", URL: "http://10.255.255.1:8545"}

	var wg sync.WaitGroup
	results := make([]port.BlockchainClient, 3)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := p.GetClient(context.Background(), slow)
			assert.NoError(t, err)
			results[i] = c
		}()
	}
	<-started

	done := make(chan error, 1)
	go func() {
		_, err := p.GetClient(context.Background(), entity.NetworkDefinition{Name: "fast", URL: "http://127.0.0.1:8545"})
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("GetClient for another network waited on a pending dial")
	}

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), slowDials.Load())
	assert.Same(t, results[0], results[1])
	assert.Same(t, results[0], results[2])
}

func TestEVMClientProvider_DialErrorIsNotCached(t *testing.T) {
	var dials atomic.Int32
	dial := func(context.Context, entity.NetworkDefinition, time.Duration, time.Duration) (port.BlockchainClient, error) {
		dials.Add(1)
		return nil, errors.New("connection refused")
	}
	p := NewEVMClientProviderWithDialer(dial, time.Second, time.Second, logger.NewNop())
	def := entity.NetworkDefinition{Name: "ganache"}

	_, err := p.GetClient(context.Background(), def)
	assert.ErrorContains(t, err, "connection refused")
	_, err = p.GetClient(context.Background(), def)
	assert.Error(t, err)
	assert.Equal(t, int32(2), dials.Load())
}

func TestNewEVMClient_UnreachableURL(t *testing.T) {
	// Dialing an HTTP URL is lazy; the chain id check forces a round trip.
	def := entity.NetworkDefinition{Name: "nowhere", URL: "http://127.0.0.1:1", ChainID: 1}
	_, err := NewEVMClient(context.Background(), def, 500*time.Millisecond, 500*time.Millisecond)
	assert.Error(t, err)
}
