package contract

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaller answers calls by method selector with ABI-encoded outputs.
type fakeCaller struct {
	t       *testing.T
	answers map[string][]any
	err     error
	lastTo  common.Address
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastTo = *msg.To
	parsed := HouseTokenABI()
	for name, method := range parsed.Methods {
		if !bytes.Equal(msg.Data[:4], method.ID) {
			continue
		}
		outs, ok := f.answers[name]
		if !ok {
			return nil, nil
		}
		packed, err := method.Outputs.Pack(outs...)
		require.NoError(f.t, err)
		return packed, nil
	}
	return nil, errors.New("unknown selector")
}

func TestHouseContract_Reads(t *testing.T) {
	caller := &fakeCaller{t: t, answers: map[string][]any{
		"balanceOf":           {big.NewInt(2)},
		"tokenOfOwnerByIndex": {big.NewInt(17)},
		"tokenURI":            {"ipfs://Qm123/17.json"},
	}}
	addr := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	c := NewHouseContract(addr, caller)

	assert.Equal(t, addr, c.Address())

	bal, err := c.BalanceOf(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), bal.Int64())
	assert.Equal(t, addr, caller.lastTo)

	id, err := c.TokenOfOwnerByIndex(context.Background(), owner, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, int64(17), id.Int64())

	uri, err := c.TokenURI(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://Qm123/17.json", uri)
}

func TestHouseContract_EmptyResultMeansNotDeployed(t *testing.T) {
	c := NewHouseContract(common.HexToAddress("0x01"), &fakeCaller{t: t, answers: map[string][]any{}})
	_, err := c.BalanceOf(context.Background(), common.Address{})
	assert.ErrorContains(t, err, "returned no data")
}

func TestHouseContract_CallError(t *testing.T) {
	c := NewHouseContract(common.HexToAddress("0x01"), &fakeCaller{t: t, err: errors.New("execution reverted")})
	_, err := c.TokenURI(context.Background(), big.NewInt(1))
	assert.ErrorContains(t, err, "execution reverted")
}
