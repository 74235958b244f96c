package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"houses_market/internal/app/port"
	"houses_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrChainIDMismatch is returned when a node reports a chain id other than the configured one.
var ErrChainIDMismatch = errors.New("chain id mismatch")

// EVMClient implements port.BlockchainClient for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
}

// NewEVMClient dials the network and, when a chain id is configured, checks it.
func NewEVMClient(ctx context.Context, netDef entity.NetworkDefinition, connectionTimeout, rpcCallTimeout time.Duration) (port.BlockchainClient, error) {
	dialCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	ethClient, err := ethclient.DialContext(dialCtx, netDef.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", netDef.URL, err)
	}

	c := &EVMClient{ethClient: ethClient, netDef: netDef, rpcCallTimeout: rpcCallTimeout}
	if netDef.ChainID == 0 {
		return c, nil
	}

	chainID, err := c.ChainID(dialCtx)
	if err != nil {
		ethClient.Close()
		return nil, fmt.Errorf("failed to verify chain id for %s: %w", netDef.Name, err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != netDef.ChainID {
		ethClient.Close()
		return nil, fmt.Errorf("%w for %s: expected %d, got %s", ErrChainIDMismatch, netDef.Name, netDef.ChainID, chainID)
	}
	return c, nil
}

func (c *EVMClient) withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.rpcCallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.rpcCallTimeout)
}

// ChainID asks the node for its chain id.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	callCtx, cancel := c.withCallTimeout(ctx)
	defer cancel()
	return c.ethClient.ChainID(callCtx)
}

// BalanceAt returns the native balance of account.
func (c *EVMClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	callCtx, cancel := c.withCallTimeout(ctx)
	defer cancel()
	return c.ethClient.BalanceAt(callCtx, account, blockNumber)
}

// CallContract executes a read-only message call.
func (c *EVMClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	callCtx, cancel := c.withCallTimeout(ctx)
	defer cancel()
	return c.ethClient.CallContract(callCtx, msg, blockNumber)
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}
