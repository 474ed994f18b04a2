// internal/driver/static/element.go
package static

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/digoaraujo/Testy/internal/driver"
)

// element is a handle to one node of a Document.
type element struct {
	doc  *Document
	node *html.Node
	id   string
}

var _ driver.Element = (*element)(nil)

func (e *element) ID() string { return e.id }

// readable checks the handle under the read lock and runs fn.
func (e *element) readable(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	if !e.doc.attached(e.node) {
		return fmt.Errorf("<%s>: %w", e.node.Data, driver.ErrStaleElement)
	}
	fn()
	return nil
}

// interact checks that the node is attached, displayed and enabled, then runs
// fn under the write lock.
func (e *element) interact(ctx context.Context, needEnabled bool, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if !e.doc.attached(e.node) {
		return fmt.Errorf("<%s>: %w", e.node.Data, driver.ErrStaleElement)
	}
	if !displayed(e.node) {
		return fmt.Errorf("<%s> is not displayed: %w", e.node.Data, driver.ErrNotInteractable)
	}
	if needEnabled && !enabled(e.node) {
		return fmt.Errorf("<%s> is disabled: %w", e.node.Data, driver.ErrNotInteractable)
	}
	return fn()
}

func (e *element) Attribute(ctx context.Context, name string) (value string, ok bool, err error) {
	err = e.readable(ctx, func() {
		if strings.EqualFold(name, "value") && e.node.Data == "textarea" {
			value, ok = htmlquery.InnerText(e.node), true
			return
		}
		value, ok = getAttr(e.node, name)
	})
	return value, ok, err
}

// Text returns the whitespace-collapsed text of a displayed element and the
// empty string for a hidden one.
func (e *element) Text(ctx context.Context) (text string, err error) {
	err = e.readable(ctx, func() {
		if displayed(e.node) {
			text = strings.Join(strings.Fields(htmlquery.InnerText(e.node)), " ")
		}
	})
	return text, err
}

func (e *element) TagName(ctx context.Context) (tag string, err error) {
	err = e.readable(ctx, func() { tag = e.node.Data })
	return tag, err
}

// CSSValue reads the property from the inline style attribute.
func (e *element) CSSValue(ctx context.Context, property string) (value string, err error) {
	err = e.readable(ctx, func() { value = inlineStyle(e.node)[strings.ToLower(property)] })
	return value, err
}

// Rect reports inline pixel sizes. Static documents have no layout, so
// position is always the origin.
func (e *element) Rect(ctx context.Context) (r driver.Rect, err error) {
	err = e.readable(ctx, func() {
		if !displayed(e.node) {
			return
		}
		style := inlineStyle(e.node)
		r.Width = pixels(style["width"])
		r.Height = pixels(style["height"])
	})
	return r, err
}

func (e *element) Click(ctx context.Context) error {
	return e.interact(ctx, true, func() error {
		switch {
		case isInput(e.node, "checkbox"):
			if hasAttr(e.node, "checked") {
				removeAttr(e.node, "checked")
			} else {
				setAttr(e.node, "checked", "checked")
			}
		case isInput(e.node, "radio"):
			checkRadio(e.node)
		case e.node.Data == "option":
			selectOption(e.node)
		}
		e.doc.record("click", e, "")
		return nil
	})
}

func (e *element) DoubleClick(ctx context.Context) error {
	return e.interact(ctx, true, func() error {
		e.doc.record("dblclick", e, "")
		return nil
	})
}

func (e *element) SendKeys(ctx context.Context, keys string) error {
	return e.interact(ctx, true, func() error {
		if !editable(e.node) {
			return fmt.Errorf("<%s> does not accept text: %w", e.node.Data, driver.ErrNotInteractable)
		}
		current := currentValue(e.node)
		writeValue(e.node, current+keys)
		e.doc.record("keys", e, keys)
		return nil
	})
}

func (e *element) Clear(ctx context.Context) error {
	return e.interact(ctx, true, func() error {
		if !editable(e.node) {
			return fmt.Errorf("<%s> cannot be cleared: %w", e.node.Data, driver.ErrNotInteractable)
		}
		writeValue(e.node, "")
		e.doc.record("clear", e, "")
		return nil
	})
}

func (e *element) Submit(ctx context.Context) error {
	return e.interact(ctx, false, func() error {
		form := closest(e.node, "form")
		if form == nil {
			return fmt.Errorf("<%s> is not inside a form: %w", e.node.Data, driver.ErrNotInteractable)
		}
		formID, _ := getAttr(form, "id")
		e.doc.record("submit", e, formID)
		return nil
	})
}

func (e *element) Hover(ctx context.Context) error {
	return e.interact(ctx, false, func() error {
		e.doc.record("hover", e, "")
		return nil
	})
}

func (e *element) IsSelected(ctx context.Context) (selected bool, err error) {
	err = e.readable(ctx, func() {
		selected = hasAttr(e.node, "checked") || hasAttr(e.node, "selected")
	})
	return selected, err
}

func (e *element) IsDisplayed(ctx context.Context) (shown bool, err error) {
	err = e.readable(ctx, func() { shown = displayed(e.node) })
	return shown, err
}

func (e *element) IsEnabled(ctx context.Context) (ok bool, err error) {
	err = e.readable(ctx, func() { ok = enabled(e.node) })
	return ok, err
}

// -- DOM helpers; callers hold the document lock --

func getAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, name string) bool {
	_, ok := getAttr(n, name)
	return ok
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if strings.EqualFold(n.Attr[i].Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if !strings.EqualFold(a.Key, name) {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func isInput(n *html.Node, typ string) bool {
	if n.Data != "input" {
		return false
	}
	t, _ := getAttr(n, "type")
	return strings.EqualFold(t, typ)
}

func closest(n *html.Node, tag string) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func inlineStyle(n *html.Node) map[string]string {
	props := make(map[string]string)
	raw, ok := getAttr(n, "style")
	if !ok {
		return props
	}
	for _, decl := range strings.Split(raw, ";") {
		name, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		props[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return props
}

func pixels(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

func zeroSize(v string) bool {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	return err == nil && f == 0
}

var invisibleTags = map[string]bool{
	"head": true, "script": true, "style": true, "template": true, "noscript": true, "title": true, "meta": true, "link": true,
}

// displayed approximates visibility from markup alone: hidden attributes,
// inline display and visibility, zero inline size and hidden inputs.
func displayed(n *html.Node) bool {
	if isInput(n, "hidden") {
		return false
	}
	style := inlineStyle(n)
	if zeroSize(style["width"]) || zeroSize(style["height"]) {
		return false
	}
	for c := n; c != nil; c = c.Parent {
		if c.Type != html.ElementNode {
			continue
		}
		if invisibleTags[c.Data] || hasAttr(c, "hidden") {
			return false
		}
		s := inlineStyle(c)
		if s["display"] == "none" || s["visibility"] == "hidden" {
			return false
		}
	}
	return true
}

func enabled(n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c.Type != html.ElementNode {
			continue
		}
		if c == n && hasAttr(c, "disabled") {
			return false
		}
		if c != n && c.Data == "fieldset" && hasAttr(c, "disabled") {
			return false
		}
	}
	return true
}

func editable(n *html.Node) bool {
	switch n.Data {
	case "textarea":
		return !hasAttr(n, "readonly")
	case "input":
		t, _ := getAttr(n, "type")
		switch strings.ToLower(t) {
		case "checkbox", "radio", "submit", "button", "reset", "image", "file", "hidden":
			return false
		}
		return !hasAttr(n, "readonly")
	}
	v, ok := getAttr(n, "contenteditable")
	return ok && !strings.EqualFold(v, "false")
}

func currentValue(n *html.Node) string {
	if n.Data == "input" {
		v, _ := getAttr(n, "value")
		return v
	}
	return htmlquery.InnerText(n)
}

func writeValue(n *html.Node, value string) {
	if n.Data == "input" {
		setAttr(n, "value", value)
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if value != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	}
}

func checkRadio(n *html.Node) {
	name, _ := getAttr(n, "name")
	scope := closest(n, "form")
	if scope == nil {
		scope = n
		for scope.Parent != nil {
			scope = scope.Parent
		}
	}
	if name != "" {
		for _, other := range htmlquery.Find(scope, "//input[@type='radio']") {
			if v, _ := getAttr(other, "name"); v == name {
				removeAttr(other, "checked")
			}
		}
	}
	setAttr(n, "checked", "checked")
}

func selectOption(n *html.Node) {
	sel := closest(n, "select")
	if sel != nil && hasAttr(sel, "multiple") {
		if hasAttr(n, "selected") {
			removeAttr(n, "selected")
		} else {
			setAttr(n, "selected", "selected")
		}
		return
	}
	if sel != nil {
		for _, opt := range htmlquery.Find(sel, ".//option") {
			removeAttr(opt, "selected")
		}
	}
	setAttr(n, "selected", "selected")
}
