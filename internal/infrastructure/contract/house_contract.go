package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"houses_market/internal/app/port"
	"houses_market/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Read-only slice of the ERC-721 Enumerable + Metadata ABI used by the views.
const houseTokenABI = `[
{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"index","type":"uint256"}],"name":"tokenOfOwnerByIndex","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"tokenURI","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"}
]`

var (
	parsedHouseABI  abi.ABI
	parsedHouseOnce sync.Once
)

// HouseTokenABI returns the parsed ABI, parsing it on first use.
func HouseTokenABI() abi.ABI {
	parsedHouseOnce.Do(func() {
		var err error
		parsedHouseABI, err = abi.JSON(strings.NewReader(houseTokenABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse house token ABI: %v", err))
		}
	})
	return parsedHouseABI
}

// HouseContract implements port.HouseContract over any ethereum.ContractCaller.
type HouseContract struct {
	address common.Address
	caller  ethereum.ContractCaller
	abi     abi.ABI
}

// NewHouseContract binds the token deployed at address.
func NewHouseContract(address common.Address, caller ethereum.ContractCaller) port.HouseContract {
	return &HouseContract{address: address, caller: caller, abi: HouseTokenABI()}
}

// Address returns the bound contract address.
func (c *HouseContract) Address() common.Address {
	return c.address
}

func (c *HouseContract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	start := time.Now()
	defer func() {
		metrics.ContractCallLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	out, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call to %s failed: %w", method, c.address.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s call to %s returned no data; is the contract deployed?", method, c.address.Hex())
	}
	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s unpack returned no data", method)
	}
	return values, nil
}

func (c *HouseContract) callBigInt(ctx context.Context, method string, args ...any) (*big.Int, error) {
	values, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type %T", method, values[0])
	}
	return v, nil
}

// BalanceOf returns how many house tokens owner holds.
func (c *HouseContract) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return c.callBigInt(ctx, "balanceOf", owner)
}

// TokenOfOwnerByIndex returns the id of owner's index-th token.
func (c *HouseContract) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	return c.callBigInt(ctx, "tokenOfOwnerByIndex", owner, index)
}

// TokenURI returns the metadata URI of tokenID.
func (c *HouseContract) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	values, err := c.call(ctx, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	uri, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected tokenURI result type %T", values[0])
	}
	return uri, nil
}
