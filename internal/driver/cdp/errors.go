// internal/driver/cdp/errors.go
package cdp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/digoaraujo/Testy/internal/driver"
)

// Protocol error messages the DevTools backend uses for nodes that left the
// document, and for nodes that have no layout to act on.
var (
	staleMessages = []string{
		"No node with given id",
		"Could not find node with given id",
		"Node with given id does not belong to the document",
		"Cannot find context with specified id",
		"Cannot find object with id",
		"stale element",
	}
	notInteractableMessages = []string{
		"Could not compute box model",
		"Could not compute content quads",
		"Element is not focusable",
		"not interactable",
	}
)

// classify maps a chromedp failure onto the driver sentinels. ctx is the
// caller's context and opCtx the per-operation one bounded by timeout.
func (d *Driver) classify(ctx, opCtx context.Context, op string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if pageErr := d.ctx.Err(); pageErr != nil {
		return fmt.Errorf("%s: page closed: %w", op, pageErr)
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		// The caller still has time, so this is the driver's own bound and
		// worth another attempt. Wrapping DeadlineExceeded would make it fatal.
		d.logger.Debug("CDP operation timed out.", zap.String("op", op), zap.Duration("timeout", timeout))
		return fmt.Errorf("%w: %s after %v", driver.ErrTimeout, op, timeout)
	}
	return mapProtocolError(op, err)
}

func mapProtocolError(op string, err error) error {
	switch {
	case errors.Is(err, chromedp.ErrInvalidContext), errors.Is(err, chromedp.ErrInvalidTarget):
		return fmt.Errorf("%w: %s: %v", driver.ErrUnsupported, op, err)
	case errors.Is(err, chromedp.ErrInvalidDimensions):
		return fmt.Errorf("%w: %s: %v", driver.ErrNotInteractable, op, err)
	}
	msg := err.Error()
	if containsAny(msg, staleMessages) {
		return fmt.Errorf("%w: %s: %v", driver.ErrStaleElement, op, err)
	}
	if containsAny(msg, notInteractableMessages) {
		return fmt.Errorf("%w: %s: %v", driver.ErrNotInteractable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
