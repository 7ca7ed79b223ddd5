package rates

import (
	"errors"
	"strings"

	"smartchange/internal/domain"

	"github.com/shopspring/decimal"
)

// UnavailableMarker is displayed instead of a number when no rate exists.
const UnavailableMarker = "rate unavailable"

var (
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrRateUnavailable = errors.New(UnavailableMarker)
)

var serviceFeeRate = decimal.RequireFromString("0.03")

// Bounds on accepted amounts. Formatting writes out every digit, so an
// exponent like 1e10000000 must never reach StringFixed.
const (
	maxAmountLen      = 64
	maxIntegerDigits  = 30
	maxFractionDigits = 30
)

// ParseAmount parses a user-entered amount. Anything that is not a strictly
// positive number within the bounds above is ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountLen {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	exp := int64(d.Exponent())
	if exp < -maxFractionDigits || int64(d.NumDigits())+exp > maxIntegerDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Convert converts amount from one currency to another using m and formats
// the result with the destination's fraction digits.
func Convert(m domain.Matrix, amount string, from, to domain.Currency) (string, error) {
	a, err := ParseAmount(amount)
	if err != nil {
		return "", err
	}
	rate, ok := m.Rate(from, to)
	if !ok {
		return "", ErrRateUnavailable
	}
	return Format(a.Mul(decimal.NewFromFloat(rate)), to), nil
}

// Format renders d with the fixed number of fraction digits for c.
func Format(d decimal.Decimal, c domain.Currency) string {
	return d.StringFixed(c.FractionDigits())
}

// Display maps a Convert outcome to what the widget shows: the number, the
// unavailable marker, or an empty string for an invalid amount.
func Display(value string, err error) string {
	switch {
	case err == nil:
		return value
	case errors.Is(err, ErrRateUnavailable):
		return UnavailableMarker
	default:
		return ""
	}
}

// ServiceFee is 3% of amount with two fraction digits, or "" when amount is invalid.
func ServiceFee(amount string) string {
	a, err := ParseAmount(amount)
	if err != nil {
		return ""
	}
	return a.Mul(serviceFeeRate).StringFixed(2)
}
