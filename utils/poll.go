package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBudgetExceeded is returned by Poll when the budget expires before the
// predicate accepts.
var ErrBudgetExceeded = errors.New("poll budget exceeded")

// Poll calls fn every step until it reports done, the budget is spent, or
// ctx is cancelled. The page exposes no completion events for the updates we
// wait on, so a fixed-budget poll is the only robust mechanism; budgets are
// tuned so the common case resolves in one or two iterations.
//
// fn errors are treated as "not yet" and retried; the last one is wrapped
// into the returned ErrBudgetExceeded.
func Poll(ctx context.Context, budget, step time.Duration, fn func() (bool, error)) error {
	deadline := time.Now().Add(budget)
	var lastErr error
	for {
		done, err := fn()
		if done && err == nil {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		if time.Now().After(deadline) {
			if lastErr != nil {
				return fmt.Errorf("%w: last attempt: %v", ErrBudgetExceeded, lastErr)
			}
			return ErrBudgetExceeded
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step):
		}
	}
}
