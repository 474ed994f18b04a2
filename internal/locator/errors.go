// internal/locator/errors.go
package locator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/digoaraujo/Testy/internal/driver"
)

// ElementNotFoundError reports that a resolution came back empty. Inside a
// retry loop it is transient; the next attempt resolves again.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found matching selector '%s'", e.Selector)
}

// NewElementNotFoundError creates a new ElementNotFoundError.
func NewElementNotFoundError(selector string) *ElementNotFoundError {
	return &ElementNotFoundError{Selector: selector}
}

// ErrNoDriver is returned by locators that were never bound to an executor.
var ErrNoDriver = fmt.Errorf("locator is not bound to a driver: %w", driver.ErrUnsupported)

type noDriver struct{}

func (noDriver) Query(context.Context, string) ([]driver.Element, error) {
	return nil, ErrNoDriver
}

func (noDriver) ExecuteScript(context.Context, string) (json.RawMessage, error) {
	return nil, ErrNoDriver
}

var unbound = NewExecutor(noDriver{}, DefaultSettings())
