package port

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// HouseContract is a read binding to the deployed houses token (ERC-721 Enumerable).
type HouseContract interface {
	Address() common.Address
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error)
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
}
