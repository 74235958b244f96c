package port

import (
	"context"
	"math/big"

	"houses_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// BlockchainClient is a connection to one configured network.
type BlockchainClient interface {
	ethereum.ContractCaller

	// ChainID asks the node for its chain id.
	ChainID(ctx context.Context) (*big.Int, error)

	// BalanceAt returns the native balance of an account at the given block (nil for latest).
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition

	Close()
}

// BlockchainClientProvider hands out clients, one per network.
type BlockchainClientProvider interface {
	GetClient(ctx context.Context, networkDefinition entity.NetworkDefinition) (BlockchainClient, error)
}
