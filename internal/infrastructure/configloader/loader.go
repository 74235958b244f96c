package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"sort"
	"strings"

	"houses_market/internal/domain/entity"
	"houses_market/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoSolidityVersion      = errors.New("solidity version is not set")
	ErrNoNetworks             = errors.New("no networks configured")
	ErrInvalidNetworkURL      = errors.New("invalid network url")
	ErrPlaintextCredential    = errors.New("plaintext credentials are not allowed in config; use accountsEnv")
	ErrMissingCredential      = errors.New("credential environment variable is not set")
	ErrInvalidCredential      = errors.New("credential is not a valid private key")
	ErrUnknownDefaultNetwork  = errors.New("default network is not configured")
	ErrInvalidContractAddress = errors.New("invalid contract address")
)

var allowedURLSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
	"ws":    {},
	"wss":   {},
}

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// NetworkConfig is one deployment target.
type NetworkConfig struct {
	URL         string   `yaml:"url"`
	ChainID     uint64   `yaml:"chainId"`
	AccountsEnv []string `yaml:"accountsEnv"`

	// LiteralAccounts exists only to reject keys committed in the file.
	LiteralAccounts []string `yaml:"accounts"`

	// Accounts are the keys resolved from AccountsEnv.
	Accounts []string `yaml:"-"`
}

// SessionConfig controls how long a page session's state lives without activity.
type SessionConfig struct {
	TTLMinutes             int    `yaml:"ttlMinutes"`
	CleanupIntervalMinutes int    `yaml:"cleanupIntervalMinutes"`
	CookieName             string `yaml:"cookieName"`
	SecureCookie           bool   `yaml:"secureCookie"`
}

// ContractConfig points at the deployed houses token. Address may be empty before deployment.
type ContractConfig struct {
	Address string `yaml:"address"`
	Network string `yaml:"network"`
}

// MetadataConfig holds token metadata client configurations.
type MetadataConfig struct {
	IPFSGateway          string  `yaml:"ipfsGateway"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RateLimit            float64 `yaml:"rateLimit"`
	Burst                int     `yaml:"burst"`
	MaxConcurrent        int     `yaml:"maxConcurrent"`
}

// RpcClientConfig holds configuration for RPC clients.
type RpcClientConfig struct {
	ConnectTimeoutMs int64 `yaml:"connectTimeoutMs"`
	CallTimeoutMs    int64 `yaml:"callTimeoutMs"`
}

// FrontendConfig holds browser-facing settings.
type FrontendConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Config is the top-level configuration structure.
type Config struct {
	Solidity       string                   `yaml:"solidity"`
	DefaultNetwork string                   `yaml:"defaultNetwork"`
	Networks       map[string]NetworkConfig `yaml:"networks"`
	Server         ServerConfig             `yaml:"server"`
	Logging        LoggingConfig            `yaml:"logging"`
	Session        SessionConfig            `yaml:"session"`
	Contract       ContractConfig           `yaml:"contract"`
	Metadata       MetadataConfig           `yaml:"metadata"`
	RpcClient      RpcClientConfig          `yaml:"rpcClient"`
	Frontend       FrontendConfig           `yaml:"frontend"`
}

// LoadDotEnv loads KEY=VALUE files into the environment without overriding variables
// that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
		logrus.Infof("Loaded environment from %s", p)
	}
	return nil
}

// Load reads the YAML configuration file from the given path, expands ${VAR} references,
// resolves credentials from the environment and validates the result.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse is Load without the file read.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.resolveCredentials(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Solidity = strings.TrimSpace(c.Solidity)

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = 30
		logrus.Infof("Session.TTLMinutes not set, defaulting to %d minutes", c.Session.TTLMinutes)
	}
	if c.Session.CleanupIntervalMinutes <= 0 {
		c.Session.CleanupIntervalMinutes = 5
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "houses_session"
	}

	if c.Metadata.IPFSGateway == "" {
		c.Metadata.IPFSGateway = "https://ipfs.io/ipfs/"
		logrus.Infof("Metadata.IPFSGateway not set, defaulting to %s", c.Metadata.IPFSGateway)
	}
	if c.Metadata.RequestTimeoutMillis <= 0 {
		c.Metadata.RequestTimeoutMillis = 10000
	}
	if c.Metadata.RateLimit <= 0 {
		c.Metadata.RateLimit = 10
	}
	if c.Metadata.Burst <= 0 {
		c.Metadata.Burst = 5
	}
	if c.Metadata.MaxConcurrent <= 0 {
		c.Metadata.MaxConcurrent = 4
	}

	if c.RpcClient.ConnectTimeoutMs <= 0 {
		c.RpcClient.ConnectTimeoutMs = 10000
	}
	if c.RpcClient.CallTimeoutMs <= 0 {
		c.RpcClient.CallTimeoutMs = 10000
	}

	if c.DefaultNetwork == "" && len(c.Networks) > 0 {
		names := c.NetworkNames()
		c.DefaultNetwork = names[0]
		if len(names) > 1 {
			logrus.Warnf("defaultNetwork not set, using '%s' out of %d networks", c.DefaultNetwork, len(names))
		}
	}
	if c.Contract.Network == "" {
		c.Contract.Network = c.DefaultNetwork
	}
}

func (c *Config) resolveCredentials() error {
	for _, name := range c.NetworkNames() {
		network := c.Networks[name]
		if len(network.LiteralAccounts) > 0 {
			return fmt.Errorf("network '%s': %w", name, ErrPlaintextCredential)
		}

		network.Accounts = make([]string, 0, len(network.AccountsEnv))
		for _, envName := range network.AccountsEnv {
			key, ok := os.LookupEnv(envName)
			if !ok || strings.TrimSpace(key) == "" {
				return fmt.Errorf("network '%s': %w: %s", name, ErrMissingCredential, envName)
			}
			if _, err := utils.ParsePrivateKey(key); err != nil {
				return fmt.Errorf("network '%s', %s: %w", name, envName, ErrInvalidCredential)
			}
			network.Accounts = append(network.Accounts, strings.TrimSpace(key))
		}
		if len(network.Accounts) == 0 {
			logrus.Warnf("Network '%s' has no signing accounts; deployments to it will fail.", name)
		}
		c.Networks[name] = network
	}
	return nil
}

// Validate checks the invariants every loaded config must satisfy.
func (c *Config) Validate() error {
	if c.Solidity == "" {
		return ErrNoSolidityVersion
	}
	if len(c.Networks) == 0 {
		return ErrNoNetworks
	}
	for _, name := range c.NetworkNames() {
		if err := validateNetworkURL(c.Networks[name].URL); err != nil {
			return fmt.Errorf("network '%s': %w", name, err)
		}
	}
	if _, ok := c.Networks[c.DefaultNetwork]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDefaultNetwork, c.DefaultNetwork)
	}
	if _, ok := c.Networks[c.Contract.Network]; !ok {
		return fmt.Errorf("contract: %w: %s", ErrUnknownDefaultNetwork, c.Contract.Network)
	}
	if c.Contract.Address != "" && !common.IsHexAddress(c.Contract.Address) {
		return fmt.Errorf("%w: %s", ErrInvalidContractAddress, c.Contract.Address)
	}
	return nil
}

func validateNetworkURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidNetworkURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNetworkURL, err)
	}
	if _, ok := allowedURLSchemes[strings.ToLower(u.Scheme)]; !ok {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidNetworkURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidNetworkURL)
	}
	return nil
}

// NetworkNames returns the configured network names in sorted order.
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Network returns the named network as a domain definition.
func (c *Config) Network(name string) (entity.NetworkDefinition, bool) {
	n, ok := c.Networks[name]
	if !ok {
		return entity.NetworkDefinition{}, false
	}
	return entity.NetworkDefinition{
		Name:     name,
		URL:      n.URL,
		ChainID:  n.ChainID,
		Accounts: append([]string(nil), n.Accounts...),
	}, true
}

// NetworkDefinitions returns every configured network, sorted by name.
func (c *Config) NetworkDefinitions() []entity.NetworkDefinition {
	defs := make([]entity.NetworkDefinition, 0, len(c.Networks))
	for _, name := range c.NetworkNames() {
		def, _ := c.Network(name)
		defs = append(defs, def)
	}
	return defs
}

// ContractNetwork returns the network the houses contract lives on.
func (c *Config) ContractNetwork() entity.NetworkDefinition {
	def, _ := c.Network(c.Contract.Network)
	return def
}
