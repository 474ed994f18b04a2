// internal/driver/driver.go
package driver

import (
	"context"
	"encoding/json"
)

// Driver is the narrow view of a browser document the locator engine needs.
// Selectors are expected to be XPath 1.0 expressions.
type Driver interface {
	// Query evaluates the selector against the current document and returns
	// every match in document order. It never waits: an empty slice means
	// nothing matches right now.
	Query(ctx context.Context, selector string) ([]Element, error)
	// ExecuteScript runs a JavaScript snippet in the page and returns its
	// JSON encoded result.
	ExecuteScript(ctx context.Context, script string) (json.RawMessage, error)
}

// Rect is the element's layout box in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is a handle to one node of the live document. Handles may go stale
// when the document changes; operations on a stale handle return
// ErrStaleElement.
type Element interface {
	// ID identifies the underlying node. Two handles with the same ID refer
	// to the same node.
	ID() string

	Attribute(ctx context.Context, name string) (value string, ok bool, err error)
	Text(ctx context.Context) (string, error)
	TagName(ctx context.Context) (string, error)
	CSSValue(ctx context.Context, property string) (string, error)
	Rect(ctx context.Context) (Rect, error)

	Click(ctx context.Context) error
	DoubleClick(ctx context.Context) error
	SendKeys(ctx context.Context, keys string) error
	Clear(ctx context.Context) error
	Submit(ctx context.Context) error
	Hover(ctx context.Context) error

	IsSelected(ctx context.Context) (bool, error)
	IsDisplayed(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
}
