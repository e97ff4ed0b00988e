package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal precision settings.
const (
	// DefaultScale is the number of fractional digits kept after normalisation.
	DefaultScale int32 = 16
	// GuardPrecision is the number of fractional digits divisions are computed
	// at before being normalised to the working scale.
	GuardPrecision int32 = 34
	// CurrencyScale is the number of fractional digits of settlement amounts.
	CurrencyScale int32 = 2
)

// Normalize rounds d half-even to scale fractional digits.
func Normalize(d decimal.Decimal, scale int32) decimal.Decimal {
	return d.RoundBank(scale)
}

// Quo divides a by b at guard precision and normalises the result to scale.
// Division by zero yields zero.
func Quo(a, b decimal.Decimal, scale int32) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, GuardPrecision).RoundBank(scale)
}

// ToCurrency rounds d half-even to cents.
func ToCurrency(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(CurrencyScale)
}

// ParseDecimal parses s and normalises it to the default scale.
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	return Normalize(d, DefaultScale), nil
}

// MustDecimal is ParseDecimal for literals known to be valid.
func MustDecimal(s string) decimal.Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}
