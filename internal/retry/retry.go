// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/digoaraujo/Testy/internal/driver"
)

// Policy decides what happens once every attempt has failed.
type Policy int

const (
	// Propagate returns the last failure wrapped in an *ExhaustedError.
	Propagate Policy = iota
	// Suppress logs a warning and reports an absent result instead of an error.
	Suppress
)

func (p Policy) String() string {
	switch p {
	case Propagate:
		return "propagate"
	case Suppress:
		return "suppress"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Options configures a single retried operation.
type Options struct {
	// Op and Selector only label errors and log entries.
	Op       string
	Selector string
	// Attempts is the total number of calls to the unit of work. Values
	// below one are treated as one.
	Attempts int
	// Pause is the constant wait between attempts.
	Pause time.Duration
	// Recover runs before the next attempt whenever an attempt failed with
	// driver.ErrNotInteractable, typically hovering or scrolling the target
	// into view.
	Recover func(ctx context.Context) error
	Logger  *zap.Logger
}

// Result is the outcome of Do: a value, a suppressed absence, or an error.
type Result[T any] struct {
	Value      T
	Suppressed bool
	Err        error
	Attempts   int
}

// OK reports whether the operation produced a value.
func (r Result[T]) OK() bool {
	return r.Err == nil && !r.Suppressed
}

// ExhaustedError is returned under Propagate when no attempt succeeded.
type ExhaustedError struct {
	Op       string
	Selector string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s on '%s' failed after %d attempt(s): %v", e.Op, e.Selector, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do calls work until it succeeds, fails fatally, or runs out of attempts.
// Fatal failures (see driver.IsFatal) are returned as-is under either policy.
func Do[T any](ctx context.Context, opts Options, policy Policy, work func(ctx context.Context) (T, error)) Result[T] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(opts.Pause)
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	made := 0
	operation := func() (T, error) {
		made++
		v, err := work(ctx)
		if err != nil && driver.IsFatal(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug("Attempt failed, retrying.",
			zap.String("op", opts.Op),
			zap.String("selector", opts.Selector),
			zap.Int("attempt", made),
			zap.Duration("pause", wait),
			zap.Error(err))
		if opts.Recover != nil && errors.Is(err, driver.ErrNotInteractable) {
			if rerr := opts.Recover(ctx); rerr != nil {
				logger.Debug("Recovery before next attempt failed.", zap.String("op", opts.Op), zap.Error(rerr))
			}
		}
	}

	value, err := backoff.RetryNotifyWithData(operation, b, notify)
	if err == nil {
		return Result[T]{Value: value, Attempts: made}
	}

	if driver.IsFatal(err) {
		return Result[T]{Err: err, Attempts: made}
	}

	if policy == Suppress {
		logger.Warn("Operation gave up, result suppressed.",
			zap.String("op", opts.Op),
			zap.String("selector", opts.Selector),
			zap.Int("attempts", made),
			zap.Error(err))
		return Result[T]{Suppressed: true, Attempts: made}
	}

	return Result[T]{
		Err:      &ExhaustedError{Op: opts.Op, Selector: opts.Selector, Attempts: made, Err: err},
		Attempts: made,
	}
}
