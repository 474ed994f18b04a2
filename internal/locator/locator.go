// internal/locator/locator.go
package locator

import (
	"context"
	"sync"
	"time"

	"github.com/digoaraujo/Testy/internal/driver"
)

// Locator is a declarative description of one element, optionally scoped to
// a container locator. It caches the handle from its latest resolution; the
// cache is cleared at the start of every resolution and is never trusted
// across attempts.
//
// The setters mutate the receiver and return it so calls can be chained.
type Locator struct {
	mu        sync.RWMutex
	container *Locator
	exec      *Executor
	criteria  Criteria
	cached    driver.Element
	selector  string
}

// New returns a locator matching any element.
func New() *Locator {
	return &Locator{}
}

// SetContainer scopes the search to descendants of container's match. The
// container is referenced, not owned. A container that would form a cycle
// is ignored.
func (l *Locator) SetContainer(container *Locator) *Locator {
	for c := container; c != nil; c = c.Container() {
		if c == l {
			return l
		}
	}
	l.mu.Lock()
	l.container = container
	l.mu.Unlock()
	return l
}

// Container returns the scoping locator, or nil.
func (l *Locator) Container() *Locator {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.container
}

// Bind attaches the executor used by the interaction shortcuts. Locators
// without one inherit their container's.
func (l *Locator) Bind(e *Executor) *Locator {
	l.mu.Lock()
	l.exec = e
	l.mu.Unlock()
	return l
}

func (l *Locator) boundExecutor() *Executor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.exec
}

func (l *Locator) update(fn func(c *Criteria)) *Locator {
	l.mu.Lock()
	fn(&l.criteria)
	l.mu.Unlock()
	return l
}

func (l *Locator) SetTag(tag string) *Locator {
	return l.update(func(c *Criteria) { c.Tag = tag })
}

func (l *Locator) SetID(id string) *Locator {
	return l.update(func(c *Criteria) { c.ID = id })
}

// SetClasses adds class tokens the element must carry.
func (l *Locator) SetClasses(classes ...string) *Locator {
	return l.update(func(c *Criteria) { c.Classes = append(c.Classes, classes...) })
}

// SetExcludeClasses adds class tokens the element must not carry.
func (l *Locator) SetExcludeClasses(classes ...string) *Locator {
	return l.update(func(c *Criteria) { c.ExcludeClasses = append(c.ExcludeClasses, classes...) })
}

func (l *Locator) SetType(typ string) *Locator {
	return l.update(func(c *Criteria) { c.Type = typ })
}

// SetAttribute adds an exact attribute match. Setting the same name twice
// replaces the earlier value.
func (l *Locator) SetAttribute(name, value string) *Locator {
	return l.update(func(c *Criteria) {
		for i := range c.Attributes {
			if c.Attributes[i].Name == name {
				c.Attributes[i].Value = value
				return
			}
		}
		c.Attributes = append(c.Attributes, Attribute{Name: name, Value: value})
	})
}

// SetLabel sets the text criterion. With no search type the match is exact.
func (l *Locator) SetLabel(text string, search ...SearchType) *Locator {
	var s SearchType
	for _, st := range search {
		s |= st
	}
	return l.update(func(c *Criteria) { c.Label = &Label{Text: text, Search: s} })
}

func (l *Locator) SetSearchType(search SearchType) *Locator {
	return l.update(func(c *Criteria) {
		if c.Label != nil {
			c.Label.Search = search
		}
	})
}

func (l *Locator) SetLabelPosition(pos LabelPosition) *Locator {
	return l.update(func(c *Criteria) { c.LabelPosition = pos })
}

func (l *Locator) SetVisibility(visible bool) *Locator {
	return l.update(func(c *Criteria) { c.Visibility = visible })
}

func (l *Locator) SetPosition(n int) *Locator {
	return l.update(func(c *Criteria) { c.Position = n })
}

func (l *Locator) SetInfo(info string) *Locator {
	return l.update(func(c *Criteria) { c.Info = info })
}

// Criteria returns a copy of the current criteria.
func (l *Locator) Criteria() Criteria {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.criteria.clone()
}

// XPath compiles the locator and its container chain.
func (l *Locator) XPath() string {
	return Compile(l)
}

// Name is the label used in logs: the info, else the label text, else the id,
// else the XPath.
func (l *Locator) Name() string {
	c := l.Criteria()
	switch {
	case c.Info != "":
		return c.Info
	case c.Label != nil && c.Label.Text != "":
		return c.Label.Text
	case c.ID != "":
		return c.ID
	default:
		return l.XPath()
	}
}

func (l *Locator) String() string {
	return l.Name()
}

// Cached returns the handle and selector stored by the last successful
// resolution.
func (l *Locator) Cached() (driver.Element, string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cached, l.selector
}

func (l *Locator) invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.selector = ""
	l.mu.Unlock()
}

func (l *Locator) store(el driver.Element, selector string) {
	l.mu.Lock()
	l.cached = el
	l.selector = selector
	l.mu.Unlock()
}

func (l *Locator) executor() *Executor {
	for c := l; c != nil; c = c.Container() {
		if e := c.boundExecutor(); e != nil {
			return e
		}
	}
	return unbound
}

// Interaction shortcuts through the bound executor.

func (l *Locator) IsPresent(ctx context.Context) bool {
	return l.executor().IsPresent(ctx, l)
}

func (l *Locator) WaitFor(ctx context.Context, timeout time.Duration) bool {
	return l.executor().WaitFor(ctx, l, timeout)
}

func (l *Locator) Click(ctx context.Context) bool {
	return l.executor().Click(ctx, l)
}

func (l *Locator) DoubleClick(ctx context.Context) bool {
	return l.executor().DoubleClick(ctx, l)
}

func (l *Locator) MouseOver(ctx context.Context) bool {
	return l.executor().MouseOver(ctx, l)
}

func (l *Locator) Clear(ctx context.Context) error {
	return l.executor().Clear(ctx, l)
}

func (l *Locator) Submit(ctx context.Context) error {
	return l.executor().Submit(ctx, l)
}

func (l *Locator) SendKeys(ctx context.Context, keys string) error {
	return l.executor().SendKeys(ctx, l, keys)
}

func (l *Locator) SetValue(ctx context.Context, value string) error {
	return l.executor().SetValue(ctx, l, value)
}

func (l *Locator) GetText(ctx context.Context) (string, bool) {
	return l.executor().GetText(ctx, l)
}

func (l *Locator) GetAttribute(ctx context.Context, name string) (string, bool) {
	return l.executor().GetAttribute(ctx, l, name)
}

func (l *Locator) GetValue(ctx context.Context) (string, bool) {
	return l.executor().GetValue(ctx, l)
}

func (l *Locator) IsSelected(ctx context.Context) bool {
	return l.executor().IsSelected(ctx, l)
}

func (l *Locator) IsDisplayed(ctx context.Context) bool {
	return l.executor().IsDisplayed(ctx, l)
}

func (l *Locator) IsEnabled(ctx context.Context) bool {
	return l.executor().IsEnabled(ctx, l)
}
