package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// Token describes a payable asset. Native marks the chain's own asset; its
// payments carry value directly instead of going through allowance/approve.
type Token struct {
	Symbol   string
	Address  string
	Decimals int
	Native   bool
}

// DefaultTokens is the fixed set the checkout supports: the wrapped native
// asset at 18 decimals and the stable token at 6.
func DefaultTokens() map[string]Token {
	return map[string]Token{
		"ETH": {
			Symbol:   "ETH",
			Address:  "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			Decimals: 18,
			Native:   true,
		},
		"USDT": {
			Symbol:   "USDT",
			Address:  "0xdac17f958d2ee523a2206206994597c13d831ec7",
			Decimals: 6,
		},
	}
}

var pow10 = func() map[int]*big.Int {
	m := make(map[int]*big.Int)
	for i := 0; i <= 18; i++ {
		m[i] = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(i)), nil)
	}
	return m
}()

// ToBaseUnits converts a human-readable decimal amount ("150", "0.5") into
// the token's smallest unit. Fractional remainders beyond the token's
// precision are rejected rather than silently truncated.
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if decimals < 0 || decimals > 18 {
		return nil, fmt.Errorf("unsupported decimals: %d", decimals)
	}

	rat, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", amount)
	}
	if rat.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive: %q", amount)
	}

	scaled := new(big.Rat).Mul(rat, new(big.Rat).SetInt(pow10[decimals]))
	if !scaled.IsInt() {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}
	return scaled.Num(), nil
}
