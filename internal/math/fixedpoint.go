package math

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DecimalConfig defines fixed-point output precision
type DecimalConfig struct {
	DecimalPrecision int32 // Number of decimal places
}

var (
	// OutputConfig is the precision used for every amount in the snapshot
	OutputConfig = DecimalConfig{DecimalPrecision: 4} // 0.0001
)

// Amount bounds: a 96-bit coefficient with at most 28 fractional digits
const (
	MaxScale         = 28
	maxIntegerDigits = 29
)

// MaxAmount is the largest magnitude an amount may have (2^96 - 1)
var MaxAmount = decimal.RequireFromString("79228162514264337593543950335")

// ErrAmountOutOfRange is returned for literals outside the amount bounds
var ErrAmountOutOfRange = errors.New("amount out of range")

type RoundingMode int

const (
	RoundHalfEven RoundingMode = iota // Banker's rounding (default)
	RoundDown
	RoundUp
)

// ParseAmount converts a decimal literal ("1.5", "  2.0000 ") into an exact
// base-10 amount. An empty string is reported as absent, not as an error.
func ParseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if err := checkBounds(d); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return decimal.NewNullDecimal(d), nil
}

// checkBounds rejects values with too many fractional digits or a magnitude
// above MaxAmount. The exponent is checked before any comparison, since
// comparing rescales the coefficient by the exponent.
func checkBounds(d decimal.Decimal) error {
	exp := int64(d.Exponent())
	if exp < -MaxScale {
		return fmt.Errorf("%w: more than %d fractional digits", ErrAmountOutOfRange, MaxScale)
	}
	if int64(d.NumDigits())+exp > maxIntegerDigits || d.Abs().GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: magnitude above %s", ErrAmountOutOfRange, MaxAmount)
	}
	return nil
}

// IsPositive reports amount > 0
func IsPositive(amount decimal.Decimal) bool {
	return amount.Sign() > 0
}

// Round rounds to the given number of fractional digits
func Round(amount decimal.Decimal, places int32, mode RoundingMode) decimal.Decimal {
	switch mode {
	case RoundDown:
		return amount.RoundDown(places)
	case RoundUp:
		return amount.RoundUp(places)
	default:
		return amount.RoundBank(places)
	}
}

// FormatAmount renders amount with exactly cfg.DecimalPrecision fractional
// digits, rounding half to even.
func FormatAmount(amount decimal.Decimal, cfg DecimalConfig) string {
	return Round(amount, cfg.DecimalPrecision, RoundHalfEven).StringFixed(cfg.DecimalPrecision)
}
