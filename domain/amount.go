package domain

import (
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ParseAmount reads a non-negative decimal amount. An empty string is zero.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(uint256.Int), nil
	}
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(ErrorInvalidAmount, "%q: %v", s, err)
	}
	return amount, nil
}

// ParseSignedAmount reads a signed decimal amount, as reported for gains and losses.
func ParseSignedAmount(s string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, errors.Wrapf(ErrorInvalidAmount, "%q", s)
	}
	return value, nil
}

func minAmount(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a.Clone()
	}
	return b.Clone()
}

// saturatingSub returns a - b, or zero when b exceeds a.
func saturatingSub(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(a, b)
}
