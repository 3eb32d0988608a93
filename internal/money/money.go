// Package money converts between integer minor units and text. Amounts are
// int64 minor units everywhere else in the module.
package money

import (
	"errors"
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = gomoney.INR

var (
	// ErrUnknownCurrency is returned for a code go-money does not know.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrInvalidAmount is returned for text that is not a decimal number or
	// that carries more digits than the currency allows.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Currency looks up an ISO 4217 code.
func Currency(code string) (*gomoney.Currency, error) {
	c := gomoney.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return c, nil
}

// Format renders minor units in the currency's display format,
// e.g. 60000 INR -> "₹600.00". Unknown currencies fall back to the plain
// decimal value followed by the code.
func Format(minor int64, code string) string {
	c, err := Currency(code)
	if err != nil {
		return decimal.New(minor, -2).StringFixed(2) + " " + code
	}
	return gomoney.New(minor, c.Code).Display()
}

// Parse converts a decimal string in major units into minor units,
// e.g. "600.50" INR -> 60050.
func Parse(s, code string) (int64, error) {
	c, err := Currency(code)
	if err != nil {
		return 0, err
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	minor := d.Shift(int32(c.Fraction))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, c.Fraction)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	return minor.IntPart(), nil
}

// Major renders minor units as a plain decimal string in major units,
// e.g. 60050 INR -> "600.50".
func Major(minor int64, code string) string {
	fraction := 2
	if c, err := Currency(code); err == nil {
		fraction = c.Fraction
	}
	return decimal.New(minor, int32(-fraction)).StringFixed(int32(fraction))
}
