// internal/widget/widget.go
package widget

import (
	"context"
	"strings"

	"github.com/digoaraujo/Testy/internal/locator"
)

// Widgets embed a *locator.Locator, so every setter and interaction of the
// locator is available on them. Constructors only preset criteria.

// TextField is an <input> whose caption is a <label> placed before it.
type TextField struct {
	*locator.Locator
}

// NewTextField finds an input inside container. With a label, the input is
// looked up after the <label> carrying that text.
func NewTextField(container *locator.Locator, label string) *TextField {
	l := locator.New().SetTag("input").SetContainer(container)
	if label != "" {
		l.SetLabel(label, locator.Trim).SetLabelPosition(locator.LabelSiblingDescendant)
	}
	return &TextField{Locator: l}
}

// Button is a <button> identified by its text.
type Button struct {
	*locator.Locator
}

func NewButton(container *locator.Locator, text string) *Button {
	l := locator.New().SetTag("button").SetContainer(container)
	if text != "" {
		l.SetLabel(text, locator.Trim)
	}
	return &Button{Locator: l}
}

// CheckBox matches Bootstrap checkboxes:
//
//	<label class="checkbox"><input type="checkbox">Stop the process?</label>
type CheckBox struct {
	*locator.Locator
}

// NewCheckBox finds any checkbox inside container.
func NewCheckBox(container *locator.Locator) *CheckBox {
	l := locator.New().SetTag("input").SetType("checkbox").SetContainer(container).SetInfo("CheckBox")
	return &CheckBox{Locator: l}
}

// NewCheckBoxWithLabel finds the checkbox nested in the <label> whose text
// contains label.
func NewCheckBoxWithLabel(container *locator.Locator, label string) *CheckBox {
	c := NewCheckBox(container)
	c.SetLabel(label, locator.Contains).SetLabelPosition(locator.LabelAncestor)
	return c
}

// NewCheckBoxWithBoxLabel finds the checkbox inside container whose own text
// is exactly boxLabel.
func NewCheckBoxWithBoxLabel(boxLabel string, container *locator.Locator) *CheckBox {
	c := NewCheckBox(container)
	c.SetLabel(boxLabel)
	return c
}

// IsSelected reports whether the checkbox exists and is checked.
func (c *CheckBox) IsSelected(ctx context.Context) bool {
	return c.IsPresent(ctx) && c.Locator.IsSelected(ctx)
}

// Check clicks the checkbox when it is not yet checked.
func (c *CheckBox) Check(ctx context.Context) bool {
	if c.IsSelected(ctx) {
		return true
	}
	return c.Click(ctx)
}

// Uncheck clicks the checkbox when it is checked.
func (c *CheckBox) Uncheck(ctx context.Context) bool {
	if !c.IsSelected(ctx) {
		return c.IsPresent(ctx)
	}
	return c.Click(ctx)
}

// DisabledSignals reports the two independent ways markup disables a
// checkbox: a class containing "disabled" and the disabled attribute.
func (c *CheckBox) DisabledSignals(ctx context.Context) (byClass, byAttribute bool) {
	if cls, ok := c.GetAttribute(ctx, "class"); ok {
		byClass = strings.Contains(cls, "disabled")
	}
	_, byAttribute = c.GetAttribute(ctx, "disabled")
	return byClass, byAttribute
}

// IsDisabled reports whether either disabled signal is present.
func (c *CheckBox) IsDisabled(ctx context.Context) bool {
	byClass, byAttribute := c.DisabledSignals(ctx)
	return byClass || byAttribute
}

// List is an ExtJS multiselect list.
type List struct {
	*locator.Locator
}

const multiselectClass = "ux-form-multiselect"

func NewList(container *locator.Locator) *List {
	l := locator.New().SetClasses(multiselectClass).SetContainer(container)
	return &List{Locator: l}
}

// Item returns the locator of the row showing text.
func (l *List) Item(text string) *locator.Locator {
	return locator.New().SetContainer(l.Locator).SetLabel(text, locator.Trim).SetInfo(text)
}

// Select clicks every row whose text is listed; it stops at the first row
// that cannot be clicked.
func (l *List) Select(ctx context.Context, values ...string) bool {
	for _, v := range values {
		if !l.Item(v).Click(ctx) {
			return false
		}
	}
	return true
}
