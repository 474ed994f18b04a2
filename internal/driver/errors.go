// internal/driver/errors.go
package driver

import (
	"context"
	"errors"
)

// Sentinel failures every Driver implementation maps its native errors onto,
// so callers can classify them with errors.Is instead of matching strings.
var (
	// ErrStaleElement means the handle no longer refers to a node attached
	// to the document.
	ErrStaleElement = errors.New("stale element reference")
	// ErrNotInteractable means the node exists but cannot receive input
	// right now (hidden, covered, zero sized or mid animation).
	ErrNotInteractable = errors.New("element not interactable")
	// ErrInvalidSelector means the selector is not a valid expression.
	ErrInvalidSelector = errors.New("invalid selector")
	// ErrUnsupported means the driver cannot perform the operation at all.
	ErrUnsupported = errors.New("operation not supported by driver")
	// ErrTimeout means a single driver round trip exceeded the driver's own
	// per-operation bound while the caller's context was still live.
	ErrTimeout = errors.New("driver operation timed out")
)

// IsFatal reports whether err can never succeed on a later attempt.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInvalidSelector) ||
		errors.Is(err, ErrUnsupported) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// IsTransient reports whether err is worth another attempt against a fresh
// resolution. Unknown driver failures count as transient; a document in flux
// surfaces all sorts of protocol errors.
func IsTransient(err error) bool {
	return err != nil && !IsFatal(err)
}
