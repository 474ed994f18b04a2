// internal/driver/cdp/driver.go
package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/antchfx/xpath"
	cdpnode "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/digoaraujo/Testy/internal/driver"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// runFunc executes chromedp actions; chromedp.Run in production.
type runFunc func(ctx context.Context, actions ...chromedp.Action) error

// Driver drives one browser tab over the Chrome DevTools Protocol.
type Driver struct {
	// ctx is the tab's chromedp context. It carries the CDP target, so every
	// action runs on a context derived from it.
	ctx    context.Context
	cancel context.CancelFunc
	run    runFunc

	actionTimeout time.Duration
	navTimeout    time.Duration
	logger        *zap.Logger
}

var _ driver.Driver = (*Driver)(nil)

func newDriver(pageCtx context.Context, cancel context.CancelFunc, actionTimeout, navTimeout time.Duration, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		ctx:           pageCtx,
		cancel:        cancel,
		run:           chromedp.Run,
		actionTimeout: actionTimeout,
		navTimeout:    navTimeout,
		logger:        logger.Named("cdp"),
	}
}

// do runs actions on the tab within the per-action bound.
func (d *Driver) do(ctx context.Context, op string, actions ...chromedp.Action) error {
	return d.doWithin(ctx, op, d.actionTimeout, actions...)
}

func (d *Driver) doWithin(ctx context.Context, op string, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(d.ctx, ctx)
	defer cancel()
	opCtx, cancelOp := context.WithTimeout(runCtx, timeout)
	defer cancelOp()

	err := d.run(opCtx, actions...)
	return d.classify(ctx, opCtx, op, timeout, err)
}

// Query runs the XPath through DOM.performSearch. The expression is compiled
// locally first because the protocol silently falls back to a plain text
// search for anything it cannot parse.
func (d *Driver) Query(ctx context.Context, selector string) ([]driver.Element, error) {
	if _, err := xpath.Compile(selector); err != nil {
		return nil, fmt.Errorf("%w: '%s': %v", driver.ErrInvalidSelector, selector, err)
	}
	var nodes []*cdpnode.Node
	if err := d.do(ctx, "query", chromedp.Nodes(selector, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	hits := make([]driver.Element, 0, len(nodes))
	for _, n := range nodes {
		if n.NodeType == cdpnode.NodeTypeElement {
			hits = append(hits, newElement(d, n))
		}
	}
	return hits, nil
}

// ExecuteScript evaluates script in the page, awaiting a returned promise.
// An undefined result is reported as JSON null.
func (d *Driver) ExecuteScript(ctx context.Context, script string) (json.RawMessage, error) {
	var res []byte
	err := d.do(ctx, "execute script", chromedp.Evaluate(script, &res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(res), nil
}

// Navigate loads url and waits for the body to be ready, bounded by the
// navigation timeout instead of the action one.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.logger.Debug("Navigating.", zap.String("url", url))
	return d.doWithin(ctx, "navigate", d.navTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Close closes the tab.
func (d *Driver) Close() {
	d.cancel()
}
