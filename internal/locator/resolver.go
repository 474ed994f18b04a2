// internal/locator/resolver.go
package locator

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/digoaraujo/Testy/internal/driver"
)

// Resolver turns a Locator into a live handle by polling the driver.
type Resolver struct {
	drv          driver.Driver
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewResolver creates a resolver polling drv every pollInterval.
func NewResolver(drv driver.Driver, pollInterval time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = DefaultSettings().PollInterval
	}
	return &Resolver{
		drv:          drv,
		pollInterval: pollInterval,
		logger:       logger.Named("resolver"),
	}
}

// Resolve looks the locator up until it matches or timeout elapses. It always
// clears the locator's cache first and queries at least once; a zero timeout
// means exactly one query. Running out of time is not an error: the result
// is a nil handle and a nil error. Only fatal driver failures and a done ctx
// are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, l *Locator, timeout time.Duration) (driver.Element, error) {
	l.invalidate()
	selector := l.XPath()
	visible := l.Criteria().Visibility

	deadline := time.Now().Add(timeout)
	limiter := rate.NewLimiter(rate.Every(r.pollInterval), 1)
	limiter.Allow()

	for polls := 1; ; polls++ {
		el, err := r.find(ctx, selector, visible)
		if err != nil {
			if driver.IsFatal(err) {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, err
			}
			r.logger.Debug("Transient query failure, polling again.", zap.String("selector", selector), zap.Error(err))
		}
		if el != nil {
			l.store(el, selector)
			r.logger.Debug("Element resolved.", zap.String("selector", selector), zap.Int("polls", polls))
			return el, nil
		}

		remaining := time.Until(deadline)
		if timeout <= 0 || remaining <= 0 {
			r.logger.Debug("Element not resolved in time.",
				zap.String("selector", selector),
				zap.Duration("timeout", timeout),
				zap.Int("polls", polls))
			return nil, nil
		}
		// The last wait is cut short so one final query lands on the deadline.
		delay := limiter.Reserve().Delay()
		if delay > remaining {
			delay = remaining
		}
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// find runs one query and returns the first acceptable hit.
func (r *Resolver) find(ctx context.Context, selector string, visible bool) (driver.Element, error) {
	hits, err := r.drv.Query(ctx, selector)
	if err != nil {
		return nil, err
	}
	if !visible {
		if len(hits) == 0 {
			return nil, nil
		}
		return hits[0], nil
	}
	for _, el := range hits {
		shown, err := el.IsDisplayed(ctx)
		if err != nil {
			if driver.IsFatal(err) {
				return nil, err
			}
			continue
		}
		if shown {
			return el, nil
		}
	}
	return nil, nil
}
