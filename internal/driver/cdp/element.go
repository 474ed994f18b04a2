// internal/driver/cdp/element.go
package cdp

import (
	"context"
	"strconv"

	cdpnode "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/digoaraujo/Testy/internal/driver"
)

// element is a node of the tab's DOM, addressed by its protocol node id.
type element struct {
	d    *Driver
	node *cdpnode.Node
	id   string
}

var _ driver.Element = (*element)(nil)

func newElement(d *Driver, n *cdpnode.Node) *element {
	// Backend ids survive repeated queries, frontend node ids do not.
	return &element{d: d, node: n, id: strconv.FormatInt(int64(n.BackendNodeID), 10)}
}

func (e *element) ID() string { return e.id }

// jsFunc wraps body into a function called with the element as this. A node
// removed from the document throws, which classify reports as stale.
func jsFunc(body string) string {
	return "function() { if (!this.isConnected) { throw new Error('stale element'); } " + body + " }"
}

// call invokes fn on the element and decodes its JSON result into res.
func (e *element) call(ctx context.Context, op, fn string, res any) error {
	return e.d.do(ctx, op, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		v, exc, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			WithAwaitPromise(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		if res == nil || len(v.Value) == 0 {
			return nil
		}
		return jsonCodec.Unmarshal(v.Value, res)
	}))
}

// Attribute mirrors WebDriver: value, checked and selected read the live
// properties, everything else the markup attribute.
func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	var res struct {
		Value string `json:"value"`
		OK    bool   `json:"ok"`
	}
	fn := jsFunc(`const n = ` + jsString(name) + `;
		if (n === 'value' && 'value' in this) { return {value: String(this.value), ok: true}; }
		if ((n === 'checked' || n === 'selected') && n in this) { return this[n] ? {value: 'true', ok: true} : {value: '', ok: false}; }
		return this.hasAttribute(n) ? {value: this.getAttribute(n), ok: true} : {value: '', ok: false};`)
	err := e.call(ctx, "attribute", fn, &res)
	return res.Value, res.OK, err
}

func (e *element) Text(ctx context.Context) (text string, err error) {
	err = e.call(ctx, "text", jsFunc(`return (this.innerText === undefined ? this.textContent : this.innerText).trim();`), &text)
	return text, err
}

func (e *element) TagName(ctx context.Context) (tag string, err error) {
	err = e.call(ctx, "tag name", jsFunc(`return this.tagName.toLowerCase();`), &tag)
	return tag, err
}

func (e *element) CSSValue(ctx context.Context, property string) (value string, err error) {
	fn := jsFunc(`return window.getComputedStyle(this).getPropertyValue(` + jsString(property) + `);`)
	err = e.call(ctx, "css value", fn, &value)
	return value, err
}

func (e *element) Rect(ctx context.Context) (r driver.Rect, err error) {
	fn := jsFunc(`const r = this.getBoundingClientRect(); return {x: r.x, y: r.y, width: r.width, height: r.height};`)
	err = e.call(ctx, "rect", fn, &r)
	return r, err
}

func (e *element) IsSelected(ctx context.Context) (selected bool, err error) {
	err = e.call(ctx, "is selected", jsFunc(`return !!(this.checked || this.selected);`), &selected)
	return selected, err
}

func (e *element) IsDisplayed(ctx context.Context) (shown bool, err error) {
	fn := jsFunc(`const s = window.getComputedStyle(this);
		if (s.display === 'none' || s.visibility === 'hidden' || s.visibility === 'collapse') { return false; }
		if (typeof this.checkVisibility === 'function' && !this.checkVisibility()) { return false; }
		const r = this.getBoundingClientRect();
		return r.width > 0 || r.height > 0;`)
	err = e.call(ctx, "is displayed", fn, &shown)
	return shown, err
}

func (e *element) IsEnabled(ctx context.Context) (enabled bool, err error) {
	err = e.call(ctx, "is enabled", jsFunc(`return !this.disabled && !this.closest('fieldset[disabled]');`), &enabled)
	return enabled, err
}

func (e *element) Click(ctx context.Context) error {
	return e.d.do(ctx, "click", chromedp.MouseClickNode(e.node))
}

func (e *element) DoubleClick(ctx context.Context) error {
	return e.d.do(ctx, "double click", chromedp.MouseClickNode(e.node, chromedp.ClickCount(2)))
}

// Hover moves the pointer to the centre of the element, scrolling it into
// view first.
func (e *element) Hover(ctx context.Context) error {
	return e.d.do(ctx, "hover", chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithNodeID(e.node.NodeID).Do(ctx); err != nil {
			return err
		}
		quads, err := dom.GetContentQuads().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		x, y, ok := center(quads)
		if !ok {
			return chromedp.ErrInvalidDimensions
		}
		return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
	}))
}

// center averages the vertices of the first quad.
func center(quads []dom.Quad) (x, y float64, ok bool) {
	if len(quads) == 0 {
		return 0, 0, false
	}
	q := quads[0]
	if len(q) == 0 || len(q)%2 != 0 {
		return 0, 0, false
	}
	for i := 0; i < len(q); i += 2 {
		x += q[i]
		y += q[i+1]
	}
	n := float64(len(q) / 2)
	return x / n, y / n, true
}

// SendKeys focuses the element and types keys as key events.
func (e *element) SendKeys(ctx context.Context, keys string) error {
	return e.d.do(ctx, "send keys", chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.Focus().WithNodeID(e.node.NodeID).Do(ctx); err != nil {
			return err
		}
		return chromedp.KeyEvent(keys).Do(ctx)
	}))
}

// Clear empties an editable control and fires input and change, as typing
// would.
func (e *element) Clear(ctx context.Context) error {
	fn := jsFunc(`if (!('value' in this) || this.disabled || this.readOnly) { throw new Error('element not interactable'); }
		this.focus();
		this.value = '';
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));`)
	return e.call(ctx, "clear", fn, nil)
}

// Submit submits the form owning the element.
func (e *element) Submit(ctx context.Context) error {
	fn := jsFunc(`const f = this.form || this.closest('form');
		if (!f) { throw new Error('element not interactable: no enclosing form'); }
		if (typeof f.requestSubmit === 'function') { f.requestSubmit(); } else { f.submit(); }`)
	return e.call(ctx, "submit", fn, nil)
}

func jsString(s string) string {
	b, _ := jsonCodec.Marshal(s)
	return string(b)
}
