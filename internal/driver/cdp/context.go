// internal/driver/cdp/context.go
package cdp

import "context"

// CombineContext returns a context derived from primary that is also canceled
// when secondary is done. Values (the CDP target) come from primary only;
// secondary contributes its cancellation, not its deadline.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)
	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}
