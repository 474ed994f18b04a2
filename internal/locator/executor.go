// internal/locator/executor.go
package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/digoaraujo/Testy/internal/clipboard"
	"github.com/digoaraujo/Testy/internal/driver"
	"github.com/digoaraujo/Testy/internal/retry"
)

const (
	maskedValue      = "*****"
	sendKeysAttempts = 3
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Executor performs resilient operations on locators against one driver.
// Every attempt of every operation resolves the locator again; a handle is
// never reused across attempts.
type Executor struct {
	drv      driver.Driver
	resolver *Resolver
	settings Settings
	clip     *clipboard.Exclusive
	logger   *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClipboard enables pasting of long values. Executors sharing a
// clipboard must share the same Exclusive.
func WithClipboard(clip *clipboard.Exclusive) Option {
	return func(e *Executor) {
		e.clip = clip
	}
}

// NewExecutor creates an executor over drv.
func NewExecutor(drv driver.Driver, settings Settings, opts ...Option) *Executor {
	e := &Executor{
		drv:      drv,
		settings: settings,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("locator")
	e.resolver = NewResolver(drv, settings.PollInterval, e.logger)
	return e
}

// Settings returns the executor's settings.
func (e *Executor) Settings() Settings {
	return e.settings
}

// Resolve is the bounded polling lookup; see Resolver.Resolve.
func (e *Executor) Resolve(ctx context.Context, l *Locator, timeout time.Duration) (driver.Element, error) {
	return e.resolver.Resolve(ctx, l, timeout)
}

// findAgain resolves with a zero timeout and turns "not found" into an
// error so the retry loop treats it as a failed attempt.
func (e *Executor) findAgain(ctx context.Context, l *Locator) (driver.Element, error) {
	el, err := e.resolver.Resolve(ctx, l, 0)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, NewElementNotFoundError(l.XPath())
	}
	return el, nil
}

func (e *Executor) options(l *Locator, op string, attempts int) retry.Options {
	return retry.Options{
		Op:       op,
		Selector: l.XPath(),
		Attempts: attempts,
		Pause:    e.settings.RetryPause,
		Logger:   e.logger,
	}
}

// withHover adds hover recovery after not-interactable failures.
func (e *Executor) withHover(opts retry.Options, l *Locator) retry.Options {
	opts.Recover = func(ctx context.Context) error {
		el, err := e.findAgain(ctx, l)
		if err != nil {
			return err
		}
		return el.Hover(ctx)
	}
	return opts
}

// act runs fn against a fresh handle under the given policy.
func act[T any](ctx context.Context, e *Executor, l *Locator, opts retry.Options, policy retry.Policy, fn func(ctx context.Context, el driver.Element) (T, error)) retry.Result[T] {
	return retry.Do(ctx, opts, policy, func(ctx context.Context) (T, error) {
		el, err := e.findAgain(ctx, l)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx, el)
	})
}

func (e *Executor) logFatal(op string, l *Locator, err error) {
	if err != nil {
		e.logger.Warn("Operation failed.", zap.String("op", op), zap.Stringer("locator", l), zap.Error(err))
	}
}

// IsPresent reports whether the locator matches right now.
func (e *Executor) IsPresent(ctx context.Context, l *Locator) bool {
	el, err := e.resolver.Resolve(ctx, l, 0)
	e.logFatal("isPresent", l, err)
	return el != nil
}

// Exists is IsPresent that first trusts the handle from the previous resolution.
func (e *Executor) Exists(ctx context.Context, l *Locator) bool {
	if el, _ := l.Cached(); el != nil {
		return true
	}
	return e.IsPresent(ctx, l)
}

// WaitFor polls for the locator until timeout; zero or less uses the
// configured default timeout.
func (e *Executor) WaitFor(ctx context.Context, l *Locator, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = e.settings.DefaultTimeout
	}
	el, err := e.resolver.Resolve(ctx, l, timeout)
	if err != nil {
		e.logFatal("waitFor", l, err)
		return false
	}
	if el == nil {
		fields := []zap.Field{zap.Stringer("locator", l), zap.Duration("timeout", timeout)}
		if e.settings.LogXPath {
			fields = append(fields, zap.String("xpath", l.XPath()))
		}
		e.logger.Warn("Element not found.", fields...)
		return false
	}
	return true
}

// Size counts the current matches without waiting.
func (e *Executor) Size(ctx context.Context, l *Locator) int {
	hits, err := e.drv.Query(ctx, l.XPath())
	if err != nil {
		e.logger.Debug("Size query failed.", zap.Stringer("locator", l), zap.Error(err))
		return 0
	}
	return len(hits)
}

// Click clicks the element; false when every attempt failed.
func (e *Executor) Click(ctx context.Context, l *Locator) bool {
	opts := e.withHover(e.options(l, "click", e.settings.RetryAttempts), l)
	res := act(ctx, e, l, opts, retry.Suppress, func(ctx context.Context, el driver.Element) (struct{}, error) {
		return struct{}{}, el.Click(ctx)
	})
	e.logFatal("click", l, res.Err)
	return res.OK()
}

// DoubleClick double clicks the element, falling back to a synthetic
// dblclick event when the native gesture fails.
func (e *Executor) DoubleClick(ctx context.Context, l *Locator) bool {
	opts := e.options(l, "doubleClick", e.settings.RetryAttempts)
	res := act(ctx, e, l, opts, retry.Suppress, func(ctx context.Context, el driver.Element) (struct{}, error) {
		err := el.DoubleClick(ctx)
		if err == nil || driver.IsFatal(err) {
			return struct{}{}, err
		}
		if ok, ferr := e.dispatch(ctx, l, "dblclick"); ferr == nil && ok {
			return struct{}{}, nil
		}
		return struct{}{}, err
	})
	e.logFatal("doubleClick", l, res.Err)
	return res.OK()
}

// MouseOver hovers the element.
func (e *Executor) MouseOver(ctx context.Context, l *Locator) bool {
	opts := e.options(l, "mouseOver", e.settings.RetryAttempts)
	res := act(ctx, e, l, opts, retry.Suppress, func(ctx context.Context, el driver.Element) (struct{}, error) {
		return struct{}{}, el.Hover(ctx)
	})
	e.logFatal("mouseOver", l, res.Err)
	return res.OK()
}

// Clear empties an input.
func (e *Executor) Clear(ctx context.Context, l *Locator) error {
	opts := e.options(l, "clear", e.settings.RetryAttempts)
	return act(ctx, e, l, opts, retry.Propagate, func(ctx context.Context, el driver.Element) (struct{}, error) {
		return struct{}{}, el.Clear(ctx)
	}).Err
}

// Submit submits the form the element belongs to.
func (e *Executor) Submit(ctx context.Context, l *Locator) error {
	opts := e.options(l, "submit", e.settings.RetryAttempts)
	return act(ctx, e, l, opts, retry.Propagate, func(ctx context.Context, el driver.Element) (struct{}, error) {
		return struct{}{}, el.Submit(ctx)
	}).Err
}

// SendKeys types keys into the element. A target that cannot take input is
// looked up again, then hovered. Once the attempts run out it is clicked and
// typed into one last time before the failure is reported.
func (e *Executor) SendKeys(ctx context.Context, l *Locator, keys string) error {
	opts := e.withHover(e.options(l, "sendKeys", sendKeysAttempts), l)
	err := act(ctx, e, l, opts, retry.Propagate, func(ctx context.Context, el driver.Element) (struct{}, error) {
		return struct{}{}, el.SendKeys(ctx, keys)
	}).Err
	if err != nil && !driver.IsFatal(err) {
		ferr := e.clickThenType(ctx, l, keys)
		if ferr == nil {
			return nil
		}
		e.logger.Debug("Click then type failed.", zap.Stringer("locator", l), zap.Error(ferr))
	}
	if errors.Is(err, driver.ErrNotInteractable) {
		e.logger.Error("Element did not accept input.", zap.Stringer("locator", l), zap.Error(err))
	}
	return err
}

func (e *Executor) clickThenType(ctx context.Context, l *Locator, keys string) error {
	el, err := e.findAgain(ctx, l)
	if err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return err
	}
	return el.SendKeys(ctx, keys)
}

// SetValue clears the element and enters value. Values longer than
// MinCharsToType are pasted, all but the last character, and the last
// character is typed so key listeners still fire.
func (e *Executor) SetValue(ctx context.Context, l *Locator, value string) error {
	e.logger.Info("Set value.", zap.Stringer("locator", l), zap.String("value", e.loggable(l, value)))

	opts := e.options(l, "setValue", e.settings.RetryAttempts)
	return act(ctx, e, l, opts, retry.Propagate, func(ctx context.Context, el driver.Element) (struct{}, error) {
		if err := el.Clear(ctx); err != nil {
			return struct{}{}, fmt.Errorf("clear before set value: %w", err)
		}
		if value == "" {
			return struct{}{}, nil
		}
		if !e.shouldPaste(value) {
			return struct{}{}, el.SendKeys(ctx, value)
		}
		runes := []rune(value)
		head, last := string(runes[:len(runes)-1]), string(runes[len(runes)-1])
		if head != "" {
			if err := e.clip.Transfer(ctx, head, el); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, el.SendKeys(ctx, last)
	}).Err
}

func (e *Executor) shouldPaste(value string) bool {
	threshold := e.settings.MinCharsToType
	if e.clip == nil || threshold < 0 {
		return false
	}
	return len([]rune(value)) > threshold
}

// loggable masks values of locators listed in LogParamsExclude.
func (e *Executor) loggable(l *Locator, value string) string {
	name := l.Name()
	for _, excluded := range e.settings.LogParamsExclude {
		if strings.EqualFold(excluded, name) {
			return maskedValue
		}
	}
	return value
}

// read runs a lenient read with the given attempt budget.
func read[T any](ctx context.Context, e *Executor, l *Locator, op string, attempts int, fn func(ctx context.Context, el driver.Element) (T, error)) (T, bool) {
	res := act(ctx, e, l, e.options(l, op, attempts), retry.Suppress, fn)
	e.logFatal(op, l, res.Err)
	return res.Value, res.OK()
}

// GetText returns the element's rendered text.
func (e *Executor) GetText(ctx context.Context, l *Locator) (string, bool) {
	return read(ctx, e, l, "getText", e.settings.RetryAttempts, func(ctx context.Context, el driver.Element) (string, error) {
		return el.Text(ctx)
	})
}

type attrValue struct {
	value   string
	present bool
}

// GetAttribute returns the attribute's value. ok is false when the element
// could not be read or does not carry the attribute.
func (e *Executor) GetAttribute(ctx context.Context, l *Locator, name string) (string, bool) {
	v, ok := read(ctx, e, l, "getAttribute", e.settings.ReadRetryAttempts, func(ctx context.Context, el driver.Element) (attrValue, error) {
		value, present, err := el.Attribute(ctx, name)
		return attrValue{value: value, present: present}, err
	})
	return v.value, ok && v.present
}

// GetValue returns the value attribute.
func (e *Executor) GetValue(ctx context.Context, l *Locator) (string, bool) {
	return e.GetAttribute(ctx, l, "value")
}

// GetAttributeID returns the DOM id and warns when it differs from the id
// the locator was built with.
func (e *Executor) GetAttributeID(ctx context.Context, l *Locator) (string, bool) {
	id, ok := e.GetAttribute(ctx, l, "id")
	if want := l.Criteria().ID; ok && want != "" && want != id {
		e.logger.Warn("Locator id differs from the element id.", zap.String("locator_id", want), zap.String("element_id", id))
	}
	return id, ok
}

func (e *Executor) GetTagName(ctx context.Context, l *Locator) (string, bool) {
	return read(ctx, e, l, "getTagName", e.settings.ReadRetryAttempts, func(ctx context.Context, el driver.Element) (string, error) {
		return el.TagName(ctx)
	})
}

func (e *Executor) GetCSSValue(ctx context.Context, l *Locator, property string) (string, bool) {
	return read(ctx, e, l, "getCssValue", e.settings.ReadRetryAttempts, func(ctx context.Context, el driver.Element) (string, error) {
		return el.CSSValue(ctx, property)
	})
}

func (e *Executor) GetRect(ctx context.Context, l *Locator) (driver.Rect, bool) {
	return read(ctx, e, l, "getRect", e.settings.ReadRetryAttempts, func(ctx context.Context, el driver.Element) (driver.Rect, error) {
		return el.Rect(ctx)
	})
}

func (e *Executor) IsSelected(ctx context.Context, l *Locator) bool {
	v, ok := read(ctx, e, l, "isSelected", e.settings.ReadRetryAttempts, func(ctx context.Context, el driver.Element) (bool, error) {
		return el.IsSelected(ctx)
	})
	return ok && v
}

func (e *Executor) IsDisplayed(ctx context.Context, l *Locator) bool {
	v, ok := read(ctx, e, l, "isDisplayed", e.settings.ReadRetryAttempts, func(ctx context.Context, el driver.Element) (bool, error) {
		return el.IsDisplayed(ctx)
	})
	return ok && v
}

func (e *Executor) IsEnabled(ctx context.Context, l *Locator) bool {
	v, ok := read(ctx, e, l, "isEnabled", e.settings.ReadRetryAttempts, func(ctx context.Context, el driver.Element) (bool, error) {
		return el.IsEnabled(ctx)
	})
	return ok && v
}

// Focus fires a synthetic mouseover on the element.
func (e *Executor) Focus(ctx context.Context, l *Locator) bool {
	return e.FireEvent(ctx, l, "mouseover")
}

// Blur fires a synthetic blur on the element.
func (e *Executor) Blur(ctx context.Context, l *Locator) bool {
	return e.FireEvent(ctx, l, "blur")
}

// FireEvent dispatches a synthetic DOM event of the given type on the element.
func (e *Executor) FireEvent(ctx context.Context, l *Locator, event string) bool {
	ok, err := e.dispatch(ctx, l, event)
	if err != nil {
		e.logger.Warn("Could not fire event.", zap.String("event", event), zap.Stringer("locator", l), zap.Error(err))
		return false
	}
	return ok
}

func (e *Executor) dispatch(ctx context.Context, l *Locator, event string) (bool, error) {
	raw, err := e.drv.ExecuteScript(ctx, eventScript(l, event))
	if err != nil {
		return false, err
	}
	var ok bool
	if err := jsonCodec.Unmarshal(raw, &ok); err != nil {
		return false, fmt.Errorf("decode event script result: %w", err)
	}
	return ok, nil
}

// ExecuteScript runs script in the page.
func (e *Executor) ExecuteScript(ctx context.Context, script string) (json.RawMessage, error) {
	return e.drv.ExecuteScript(ctx, script)
}

// eventScript builds a script that dispatches event on the locator's element
// and evaluates to whether the element was found.
func eventScript(l *Locator, event string) string {
	lookup := "document.evaluate(" + jsString(l.XPath()) +
		", document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue"
	if id := l.Criteria().ID; id != "" && l.Container() == nil {
		lookup = "document.getElementById(" + jsString(id) + ")"
	}
	return "(function(){var el=" + lookup + ";if(!el){return false;}" +
		"var ev=document.createEvent('HTMLEvents');ev.initEvent(" + jsString(event) + ",true,true);" +
		"el.dispatchEvent(ev);return true;})()"
}

func jsString(s string) string {
	b, _ := jsonCodec.Marshal(s)
	return string(b)
}
