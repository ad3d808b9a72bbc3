package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// TokenAmount is an integer amount in a token's smallest unit together with
// the token's decimal count. The integer is the source of truth; the
// human-readable form is always derived from it.
type TokenAmount struct {
	raw      *big.Int
	Decimals int32
}

// NewTokenAmount creates a TokenAmount from minor units
func NewTokenAmount(raw *big.Int, decimals int32) TokenAmount {
	if raw == nil {
		raw = new(big.Int)
	}
	return TokenAmount{raw: new(big.Int).Set(raw), Decimals: decimals}
}

// NewTokenAmountFromUint64 creates a TokenAmount from minor units
func NewTokenAmountFromUint64(raw uint64, decimals int32) TokenAmount {
	return NewTokenAmount(new(big.Int).SetUint64(raw), decimals)
}

// ParseTokenAmount converts a human-readable amount ("1.5") into minor units.
// Amounts with more fractional digits than the token supports are rejected
// rather than rounded.
func ParseTokenAmount(s string, decimals int32) (TokenAmount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return TokenAmount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return TokenAmount{}, fmt.Errorf("invalid amount %q: must not be negative", s)
	}

	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		return TokenAmount{}, fmt.Errorf("invalid amount %q: more than %d decimal places", s, decimals)
	}

	return NewTokenAmount(shifted.BigInt(), decimals), nil
}

// ParseMinorUnits parses an integer amount string as returned by chain RPCs
func ParseMinorUnits(s string, decimals int32) (TokenAmount, error) {
	raw, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return TokenAmount{}, fmt.Errorf("invalid integer amount %q", s)
	}
	return NewTokenAmount(raw, decimals), nil
}

// Int returns a copy of the minor-unit amount
func (a TokenAmount) Int() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

// MinorUnits returns the integer amount as a base-10 string
func (a TokenAmount) MinorUnits() string {
	return a.Int().String()
}

// Human returns the amount divided by 10^decimals
func (a TokenAmount) Human() decimal.Decimal {
	return decimal.NewFromBigInt(a.Int(), -a.Decimals)
}

// Float64 returns the human-readable amount as a float. Display and
// comparison only, never used to build transactions.
func (a TokenAmount) Float64() float64 {
	f, _ := a.Human().Float64()
	return f
}

// String formats the human-readable amount with at least one fractional
// digit, e.g. 1000000 at 6 decimals is "1.0".
func (a TokenAmount) String() string {
	s := a.Human().String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Cmp compares the minor-unit amounts
func (a TokenAmount) Cmp(b TokenAmount) int {
	return a.Int().Cmp(b.Int())
}

// IsZero reports whether the amount is zero
func (a TokenAmount) IsZero() bool {
	return a.Int().Sign() == 0
}

// Mul returns the amount multiplied by n
func (a TokenAmount) Mul(n int64) TokenAmount {
	return NewTokenAmount(new(big.Int).Mul(a.Int(), big.NewInt(n)), a.Decimals)
}
