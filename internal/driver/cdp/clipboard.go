// internal/driver/cdp/clipboard.go
package cdp

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/digoaraujo/Testy/internal/driver"
)

// Clipboard uses the page's async clipboard API to copy and a Ctrl+V key
// chord carrying the "paste" editing command to paste. The tab needs the
// clipboard permissions granted by Browser.NewPage.
type Clipboard struct {
	d *Driver
}

func NewClipboard(d *Driver) *Clipboard {
	return &Clipboard{d: d}
}

func (c *Clipboard) Copy(ctx context.Context, text string) error {
	script := "navigator.clipboard.writeText(" + jsString(text) + ").then(() => true)"
	if _, err := c.d.ExecuteScript(ctx, script); err != nil {
		return fmt.Errorf("clipboard copy: %w", err)
	}
	return nil
}

// Paste focuses target and dispatches the paste chord. target must come from
// the same Driver.
func (c *Clipboard) Paste(ctx context.Context, target driver.Element) error {
	el, ok := target.(*element)
	if !ok || el.d != c.d {
		return fmt.Errorf("%w: paste target does not belong to this tab", driver.ErrUnsupported)
	}
	return c.d.do(ctx, "paste", chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.Focus().WithNodeID(el.node.NodeID).Do(ctx); err != nil {
			return err
		}
		keyDown := input.DispatchKeyEvent(input.KeyDown).
			WithModifiers(input.ModifierCtrl).
			WithKey("v").
			WithCode("KeyV").
			WithWindowsVirtualKeyCode(86).
			WithCommands([]string{"paste"})
		keyUp := input.DispatchKeyEvent(input.KeyUp).
			WithModifiers(input.ModifierCtrl).
			WithKey("v").
			WithCode("KeyV").
			WithWindowsVirtualKeyCode(86)
		if err := keyDown.Do(ctx); err != nil {
			return err
		}
		return keyUp.Do(ctx)
	}))
}
