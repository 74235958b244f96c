package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"houses_market/internal/domain/entity"
	"houses_market/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckNetworks(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)

	networks := []entity.NetworkDefinition{
		{Name: "ganache", URL: "http://127.0.0.1:7545", ChainID: 1337, Accounts: []string{hexutil.Encode(crypto.FromECDSA(key))}},
		{Name: "offline", URL: "http://127.0.0.1:1"},
		{Name: "flaky", URL: "http://127.0.0.1:2"},
	}
	provider := &fakeProvider{clients: map[string]*fakeClient{
		"ganache": {chainID: big.NewInt(1337), balances: map[common.Address]*big.Int{signer: oneEther}},
		"flaky":   {chainErr: errors.New("timeout")},
	}}

	reports := NewNetworkCheckService(networks, provider, 2, logger.NewNop()).CheckNetworks(context.Background())
	require.Len(t, reports, 3)

	assert.True(t, reports[0].OK())
	assert.Equal(t, "1337", reports[0].ChainID)
	require.Len(t, reports[0].Signers, 1)
	assert.Equal(t, signer.Hex(), reports[0].Signers[0].Address)
	assert.Equal(t, "1", reports[0].Signers[0].FormattedEther)

	assert.False(t, reports[1].OK())
	assert.Contains(t, reports[1].Error, "dial refused")

	assert.False(t, reports[2].OK())
	assert.Contains(t, reports[2].Error, "timeout")
}
