package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const defaultRequestsPerMinute = 8

// ErrBudgetExhausted means no request slot frees up before the caller's
// deadline. Callers treat it like any other price source failure.
var ErrBudgetExhausted = errors.New("price source request budget exhausted")

// RequestBudget spreads calls to a metered API evenly over a minute and
// allows the whole minute's quota as a burst.
type RequestBudget struct {
	limiter *rate.Limiter
}

func NewRequestBudget(perMinute int) *RequestBudget {
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}
	return &RequestBudget{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

// Take claims one request slot. It returns at once when a slot is free and
// otherwise waits, failing with ErrBudgetExhausted if ctx ends or its
// deadline falls before the next slot.
func (b *RequestBudget) Take(ctx context.Context) error {
	if b.limiter.Allow() {
		return nil
	}
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrBudgetExhausted, err)
	}
	return nil
}

// Available is the number of calls that can be made right now.
func (b *RequestBudget) Available() int {
	return int(b.limiter.Tokens())
}
