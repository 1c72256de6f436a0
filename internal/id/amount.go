package id

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ToBaseUnits converts a human decimal amount into the asset's smallest
// unit as a big integer. Excess fractional digits are rounded to the nearest
// base unit (half up); the on-chain value never passes through a float.
func ToBaseUnits(decimal string, decimals int) (*big.Int, error) {
	decimal = strings.TrimSpace(decimal)
	if decimal == "" {
		return nil, clierr.New(clierr.CodeUsage, "amount is required")
	}
	if !decimalPattern.MatchString(decimal) {
		return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("amount must be in decimal form like 1.23, got %q", decimal))
	}
	if decimals < 0 {
		return nil, clierr.New(clierr.CodeUsage, "decimals must be >= 0")
	}

	parts := strings.SplitN(decimal, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}

	roundUp := false
	if len(fracPart) > decimals {
		dropped := fracPart[decimals:]
		fracPart = fracPart[:decimals]
		roundUp = dropped[0] >= '5'
	}
	fracPart = fracPart + strings.Repeat("0", decimals-len(fracPart))

	combined := strings.TrimLeft(intPart+fracPart, "0")
	if combined == "" {
		combined = "0"
	}
	out, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, clierr.New(clierr.CodeUsage, "invalid decimal amount")
	}
	if roundUp {
		out.Add(out, big.NewInt(1))
	}
	return out, nil
}

// FromBaseUnits renders a base-unit integer as a decimal string, trimming
// trailing fractional zeros.
func FromBaseUnits(base *big.Int, decimals int) string {
	if base == nil {
		return "0"
	}
	if decimals == 0 {
		return base.String()
	}

	s := base.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= decimals {
		pad := strings.Repeat("0", decimals-len(s)+1)
		s = pad + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	out := intPart
	if fracPart != "" {
		out = intPart + "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FromBaseUnitsString is FromBaseUnits for base-10 integer strings as
// returned by RPC balance queries.
func FromBaseUnitsString(base string, decimals int) string {
	n, ok := new(big.Int).SetString(strings.TrimSpace(base), 10)
	if !ok {
		return base
	}
	return FromBaseUnits(n, decimals)
}
