// internal/session/retry.go
//
// Bounded retry for calls to the game surface.
// Each call gets a fixed budget of tries and reports every failed one.

package session

import (
	"context"
	"time"
)

// defaultRetryBudget is the number of attempts per external call.
const defaultRetryBudget = 3

// Outcome is the result of a bounded-retry external call: either a value, or
// the last error after the budget ran out.
type Outcome[T any] struct {
	Value    T
	Err      error
	Attempts int
}

// OK reports whether the call eventually succeeded.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// attempt runs fn up to budget times, pausing delay between tries. It stops
// early when ctx is done. onFail is called after every failed try.
func attempt[T any](ctx context.Context, budget int, delay time.Duration, fn func(context.Context) (T, error), onFail func(try int, err error)) Outcome[T] {
	if budget <= 0 {
		budget = defaultRetryBudget
	}
	var out Outcome[T]
	for try := 1; try <= budget; try++ {
		out.Attempts = try
		v, err := fn(ctx)
		if err == nil {
			out.Value, out.Err = v, nil
			return out
		}
		out.Err = err
		if onFail != nil {
			onFail(try, err)
		}
		if ctx.Err() != nil || try == budget {
			break
		}
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return out
			case <-t.C:
			}
		}
	}
	return out
}
