// internal/driver/static/document.go
package static

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/digoaraujo/Testy/internal/driver"
)

// Event records an interaction performed on the document.
type Event struct {
	Type      string
	ElementID string
	Tag       string
	Value     string
}

// Document is a driver.Driver over a parsed HTML tree. It evaluates XPath
// with htmlquery and simulates the browser's basic form behaviour; there is
// no script engine and no layout. It is safe for concurrent use.
type Document struct {
	mu     sync.RWMutex
	root   *html.Node
	events []Event

	idMu sync.Mutex
	ids  map[*html.Node]string

	logger *zap.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the document's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// FromNode wraps an already parsed tree.
func FromNode(root *html.Node, opts ...Option) *Document {
	d := &Document{
		root:   root,
		ids:    make(map[*html.Node]string),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("static_driver")
	return d
}

// Load parses an HTML document.
func Load(r io.Reader, opts ...Option) (*Document, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return FromNode(root, opts...), nil
}

// LoadString parses an HTML document held in a string.
func LoadString(s string, opts ...Option) (*Document, error) {
	return Load(strings.NewReader(s), opts...)
}

// LoadFile parses the HTML file at path.
func LoadFile(path string, opts ...Option) (*Document, error) {
	root, err := htmlquery.LoadDoc(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load HTML file '%s': %w", path, err)
	}
	return FromNode(root, opts...), nil
}

// Query implements driver.Driver. Only element nodes are returned.
func (d *Document) Query(ctx context.Context, selector string) ([]driver.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	expr, err := xpath.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %v", driver.ErrInvalidSelector, selector, err)
	}

	d.mu.RLock()
	nodes := htmlquery.QuerySelectorAll(d.root, expr)
	d.mu.RUnlock()

	els := make([]driver.Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		els = append(els, &element{doc: d, node: n, id: d.nodeID(n)})
	}
	d.logger.Debug("Query evaluated.", zap.String("selector", selector), zap.Int("hits", len(els)))
	return els, nil
}

// ExecuteScript implements driver.Driver. Static documents cannot run scripts.
func (d *Document) ExecuteScript(context.Context, string) (json.RawMessage, error) {
	return nil, fmt.Errorf("static document cannot execute scripts: %w", driver.ErrUnsupported)
}

// Mutate changes the tree under the document's write lock. Handles to nodes
// removed by fn go stale.
func (d *Document) Mutate(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)
}

// HTML renders the current tree.
func (d *Document) HTML() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return htmlquery.OutputHTML(d.root, true)
}

// Events returns a copy of the interactions recorded so far.
func (d *Document) Events() []Event {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Event(nil), d.events...)
}

func (d *Document) nodeID(n *html.Node) string {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	id, ok := d.ids[n]
	if !ok {
		id = uuid.NewString()
		d.ids[n] = id
	}
	return id
}

// record appends an event; the caller holds the write lock.
func (d *Document) record(typ string, el *element, value string) {
	d.events = append(d.events, Event{Type: typ, ElementID: el.id, Tag: el.node.Data, Value: value})
}

// attached reports whether n is still part of the tree; the caller holds a lock.
func (d *Document) attached(n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c == d.root {
			return true
		}
	}
	return false
}
