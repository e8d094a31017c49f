// Package money bounds the decimal amounts a terminal accepts as input.
package money

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Input limits. Quantities, percentages and tendered cash share them.
const (
	// MaxScale is the largest number of fractional digits.
	MaxScale = 8
	// MaxExponent is the power of ten every accepted magnitude stays below.
	MaxExponent = 12
)

// ErrOutOfRange is returned for decimals outside the input limits.
var ErrOutOfRange = errors.New("amount out of range")

var limit = decimal.New(1, MaxExponent)

// Check returns ErrOutOfRange if d has more than MaxScale fractional digits
// or |d| >= 10^MaxExponent. The exponent is checked before any arithmetic,
// so d is never rescaled to an unbounded precision.
func Check(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp < -MaxScale || exp > MaxExponent {
		return ErrOutOfRange
	}
	if d.Coefficient().BitLen() > 63 {
		return ErrOutOfRange
	}
	if !d.Abs().LessThan(limit) {
		return ErrOutOfRange
	}
	return nil
}
