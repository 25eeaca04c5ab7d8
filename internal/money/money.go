// internal/money/money.go
package money

import (
	"atm-backend/internal/util"

	"github.com/shopspring/decimal"
)

// minorUnitExponent is the smallest representable scale: two decimal places.
const minorUnitExponent = -2

// Parse converts a string literal into an exact decimal amount. It fails with
// util.ErrInvalidAmount when the value is malformed, negative, or carries
// precision finer than the currency minor unit.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, util.ErrInvalidAmount
	}
	return Validate(d)
}

// Validate checks that an already-constructed decimal is a representable,
// non-negative monetary amount.
func Validate(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, util.ErrInvalidAmount
	}
	if d.Exponent() < minorUnitExponent {
		// Reject sub-cent precision rather than silently rounding.
		if !d.Equal(d.Truncate(-minorUnitExponent)) {
			return decimal.Zero, util.ErrInvalidAmount
		}
	}
	return d, nil
}

// MustParse is a test and fixture helper; it panics on invalid input.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}
