package entity

// NetworkDefinition is a named chain endpoint plus the signing credentials resolved for it.
type NetworkDefinition struct {
	Name    string `json:"name" yaml:"name"`
	URL     string `json:"url" yaml:"url"`
	ChainID uint64 `json:"chainId,omitempty" yaml:"chainId,omitempty"`
	// Accounts holds hex private keys resolved from the environment. Never serialized.
	Accounts []string `json:"-" yaml:"-"`
}

// SignerReport describes one deployer account on a network.
type SignerReport struct {
	Address        string `json:"address"`
	BalanceWei     string `json:"balanceWei"`
	FormattedEther string `json:"formattedEther"`
}

// NetworkReport is the outcome of probing a configured network before deployment.
type NetworkReport struct {
	Network         string         `json:"network"`
	URL             string         `json:"url"`
	ExpectedChainID uint64         `json:"expectedChainId,omitempty"`
	ChainID         string         `json:"chainId,omitempty"`
	Signers         []SignerReport `json:"signers,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// OK reports whether the network was reachable and consistent with its configuration.
func (r NetworkReport) OK() bool {
	return r.Error == ""
}
