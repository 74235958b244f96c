package utils

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBigInt(t *testing.T) {
	amount, ok := new(big.Int).SetString("1234500000000000000", 10)
	require.True(t, ok)

	assert.Equal(t, "1.2345", FormatBigInt(amount, 18))
	assert.Equal(t, "0", FormatBigInt(nil, 18))
	assert.Equal(t, "0", FormatBigInt(big.NewInt(0), 18))
	assert.Equal(t, "42", FormatBigInt(big.NewInt(42), 0))
	assert.Equal(t, "0.000000000000000001", FormatBigInt(big.NewInt(1), 18))
	assert.Equal(t, "-1.5", FormatBigInt(big.NewInt(-15), 1))
	assert.Equal(t, "3", FormatBigInt(big.NewInt(3000), 3))
}

func TestFormatWei(t *testing.T) {
	assert.Equal(t, "2.5", FormatWei("2500000000000000000"))
	assert.Equal(t, "abc", FormatWei("abc"))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("HOUSES_TEST_ENV", "value")
	assert.Equal(t, "value", GetEnv("HOUSES_TEST_ENV", "fallback"))
	assert.Equal(t, "fallback", GetEnv("HOUSES_TEST_ENV_UNSET", "fallback"))
}

func TestAddressFromKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := hexutil.Encode(crypto.FromECDSA(key))
	want := crypto.PubkeyToAddress(key.PublicKey)

	got, err := AddressFromKey(hexKey)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = AddressFromKey(hexKey[2:])
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = AddressFromKey("0x1234")
	assert.Error(t, err)
}
