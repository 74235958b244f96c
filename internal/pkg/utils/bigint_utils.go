package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// EtherDecimals is the number of decimals of the native currency.
const EtherDecimals uint8 = 18

// FormatBigInt converts an integer amount in base units into a decimal string.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, divisor, new(big.Int))

	out := whole.String()
	if frac.Sign() != 0 {
		fracStr := fmt.Sprintf("%0*s", int(decimals), frac.String())
		out += "." + strings.TrimRight(fracStr, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ParseBigInt parses a base-10 integer string, as used for wei amounts and token ids.
func ParseBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}

// FormatWei renders a wei amount string as ether. Unparseable input is returned unchanged.
func FormatWei(wei string) string {
	v, err := ParseBigInt(wei)
	if err != nil {
		return wei
	}
	return FormatBigInt(v, EtherDecimals)
}
