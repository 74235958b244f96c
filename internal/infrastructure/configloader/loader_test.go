package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newHexKey(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hexutil.Encode(crypto.FromECDSA(key))
}

func TestLoad_MinimalConfig(t *testing.T) {
	key := newHexKey(t)
	t.Setenv("TEST_DEPLOYER_KEY", key)

	cfg, err := Load(writeConfig(t, `
solidity: "0.8.27"
networks:
  ganache:
    url: "HTTP://127.0.0.1:7545"
    accountsEnv: [TEST_DEPLOYER_KEY]
`))
	require.NoError(t, err)

	assert.Equal(t, "0.8.27", cfg.Solidity)
	assert.Equal(t, "ganache", cfg.DefaultNetwork)
	assert.Equal(t, "ganache", cfg.Contract.Network)
	assert.Equal(t, []string{key}, cfg.Networks["ganache"].Accounts)

	def, ok := cfg.Network("ganache")
	require.True(t, ok)
	assert.Equal(t, "HTTP://127.0.0.1:7545", def.URL)
	assert.Len(t, def.Accounts, 1)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Session.TTLMinutes)
	assert.Equal(t, "houses_session", cfg.Session.CookieName)
	assert.Equal(t, "https://ipfs.io/ipfs/", cfg.Metadata.IPFSGateway)
	assert.Equal(t, int64(10000), cfg.RpcClient.CallTimeoutMs)
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_RPC_URL", "https://rpc.example.org")
	t.Setenv("TEST_CONTRACT", "0x5FbDB2315678afecb367f032d93F642f64180aa3")

	cfg, err := Load(writeConfig(t, `
solidity: "0.8.27"
networks:
  sepolia:
    url: ${TEST_RPC_URL}
contract:
  address: ${TEST_CONTRACT}
`))
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.example.org", cfg.Networks["sepolia"].URL)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.Contract.Address)
}

func TestLoad_RejectsPlaintextAccounts(t *testing.T) {
	_, err := Load(writeConfig(t, `
solidity: "0.8.27"
networks:
  ganache:
    url: "http://127.0.0.1:7545"
    accounts: ["0x0123"]
`))
	assert.ErrorIs(t, err, ErrPlaintextCredential)
}

func TestLoad_CredentialErrors(t *testing.T) {
	_, err := Load(writeConfig(t, `
solidity: "0.8.27"
networks:
  ganache:
    url: "http://127.0.0.1:7545"
    accountsEnv: [TEST_KEY_NOT_SET_ANYWHERE]
`))
	assert.ErrorIs(t, err, ErrMissingCredential)

	t.Setenv("TEST_BAD_KEY", "0xnothex")
	_, err = Load(writeConfig(t, `
solidity: "0.8.27"
networks:
  ganache:
    url: "http://127.0.0.1:7545"
    accountsEnv: [TEST_BAD_KEY]
`))
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string]struct {
		content string
		want    error
	}{
		"missing solidity": {`
networks:
  local: {url: "http://127.0.0.1:8545"}
`, ErrNoSolidityVersion},
		"no networks": {`
solidity: "0.8.27"
`, ErrNoNetworks},
		"bad scheme": {`
solidity: "0.8.27"
networks:
  local: {url: "ftp://127.0.0.1:8545"}
`, ErrInvalidNetworkURL},
		"missing host": {`
solidity: "0.8.27"
networks:
  local: {url: "http://"}
`, ErrInvalidNetworkURL},
		"port without host": {`
solidity: "0.8.27"
networks:
  local: {url: "http://:8545"}
`, ErrInvalidNetworkURL},
		"unknown default": {`
solidity: "0.8.27"
defaultNetwork: mainnet
networks:
  local: {url: "http://127.0.0.1:8545"}
`, ErrUnknownDefaultNetwork},
		"bad contract address": {`
solidity: "0.8.27"
networks:
  local: {url: "http://127.0.0.1:8545"}
contract:
  address: "0x12"
`, ErrInvalidContractAddress},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoad_DefaultNetworkIsFirstSortedName(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
solidity: "0.8.27"
networks:
  sepolia: {url: "https://rpc.sepolia.example"}
  anvil: {url: "ws://127.0.0.1:8545"}
`))
	require.NoError(t, err)
	assert.Equal(t, "anvil", cfg.DefaultNetwork)
	assert.Equal(t, []string{"anvil", "sepolia"}, cfg.NetworkNames())
	assert.Len(t, cfg.NetworkDefinitions(), 2)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("HOUSES_DOTENV_PROBE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("HOUSES_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envPath))
	assert.Equal(t, "from-file", os.Getenv("HOUSES_DOTENV_PROBE"))
}

func TestRepositoryConfigParses(t *testing.T) {
	t.Setenv("GANACHE_DEPLOYER_KEY", newHexKey(t))
	t.Setenv("HOUSES_CONTRACT_ADDRESS", "")

	cfg, err := Load(filepath.Join("..", "..", "..", "config", "config.yml"))
	require.NoError(t, err)
	assert.Equal(t, "0.8.27", cfg.Solidity)
	assert.Equal(t, uint64(1337), cfg.Networks["ganache"].ChainID)
}
