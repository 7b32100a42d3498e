package bank

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/session"
)

// Typed numbers may not exceed this many powers of ten in either direction;
// comparing or flooring a decimal rescales it to its exponent.
const maxExponent = 20

var (
	errNotNumber   = errors.New("not a number")
	errOutOfRange  = errors.New("out of range")
	minPIN, maxPIN = decimal.NewFromInt(math.MinInt), decimal.NewFromInt(math.MaxInt)
)

// ParseAmount reads a user-typed amount. Anything that is not a number is
// reported as ErrInvalidAmount, the same as a non-positive amount.
func ParseAmount(text string) (decimal.Decimal, error) {
	d, err := parseNumber(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %w", ErrInvalidAmount, text, err)
	}
	return d, nil
}

// ParsePIN reads a user-typed pin. A pin that is not a whole number, or does
// not fit in an int, can never match an account, so it fails as an
// authentication error.
func ParsePIN(text string) (int, error) {
	d, err := parseNumber(text)
	if err != nil {
		return 0, fmt.Errorf("%w: pin %w", session.ErrAuthentication, err)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: pin is not a whole number", session.ErrAuthentication)
	}
	if d.LessThan(minPIN) || d.GreaterThan(maxPIN) {
		return 0, fmt.Errorf("%w: pin %w", session.ErrAuthentication, errOutOfRange)
	}
	return int(d.IntPart()), nil
}

func parseNumber(text string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, errNotNumber
	}
	if exp := d.Exponent(); exp < -maxExponent || exp > maxExponent {
		return decimal.Zero, errOutOfRange
	}
	return d, nil
}
