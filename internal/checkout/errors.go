package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"smartchange/internal/rates"
)

var (
	ErrSessionNotFound   = errors.New("checkout session not found")
	ErrTermsNotAccepted  = errors.New("terms must be accepted")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidPair       = errors.New("exchange must be from a fiat to a crypto currency")
	ErrAddressRequired   = errors.New("crypto address is required")
	ErrNoCardSelected    = errors.New("no card selected")
	ErrReceiptRequired   = errors.New("receipt file is required")
	ErrReceiptTooLarge   = errors.New("receipt file is too large")
	ErrSessionIncomplete = errors.New("exchange details and crypto address are required")

	ErrCardNotFound = fmt.Errorf("card not found: %w", ErrNoCardSelected)

	ErrRateUnavailable = rates.ErrRateUnavailable
	ErrInvalidAmount   = rates.ErrInvalidAmount
)

// CardError lists card validation failures by field: number, expiry, cvv.
type CardError struct {
	Fields map[string]string
}

func (e *CardError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid card: " + strings.Join(parts, "; ")
}
