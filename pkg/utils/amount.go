package utils

import (
	"errors"
	"math/big"
)

var ErrInvalidAmount = errors.New("invalid decimal amount")

// ParseAmount parses a non-negative base-10 integer amount string. Amounts
// travel as strings end to end so uint256-scale values survive the trip.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, ErrInvalidAmount
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders a big integer back to its canonical decimal string
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// AddAmounts returns the decimal string sum of two amount strings
func AddAmounts(a, b string) (string, error) {
	x, err := ParseAmount(a)
	if err != nil {
		return "", err
	}
	y, err := ParseAmount(b)
	if err != nil {
		return "", err
	}
	return new(big.Int).Add(x, y).String(), nil
}
