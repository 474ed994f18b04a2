// internal/driver/static/document_test.go
package static

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"

	"github.com/digoaraujo/Testy/internal/driver"
)

const formPage = `<html><head><title>t</title></head><body>
<form id="login">
  <input id="user" type="text" value="bob">
  <input id="pass" type="password">
  <input id="token" type="hidden" value="x">
  <label class="checkbox"><input id="remember" type="checkbox">Remember me</label>
  <input type="radio" name="plan" id="free" checked>
  <input type="radio" name="plan" id="pro">
  <textarea id="notes">hello</textarea>
  <select id="color"><option id="red" selected>Red</option><option id="blue">Blue</option></select>
  <button id="go" disabled>Go</button>
</form>
<div id="hidden-parent" style="display: none"><span id="inner">Secret</span></div>
<div id="hidden-attr" hidden>Nope</div>
<div id="invisible" style="visibility:hidden">Nope</div>
<div id="sized" style="width: 120px; height: 30px; color: red">  Some   text </div>
<div id="empty-box" style="width:0">x</div>
<fieldset disabled><input id="in-fieldset" type="text"></fieldset>
<p id="outside">Free text</p>
</body></html>`

func newDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := LoadString(formPage, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return doc
}

func one(t *testing.T, doc *Document, selector string) driver.Element {
	t.Helper()
	els, err := doc.Query(context.Background(), selector)
	require.NoError(t, err)
	require.Len(t, els, 1, "selector %s", selector)
	return els[0]
}

func TestQuery(t *testing.T) {
	doc := newDoc(t)
	ctx := context.Background()

	t.Run("returns element matches in document order", func(t *testing.T) {
		els, err := doc.Query(ctx, "//input[@type='radio']")
		require.NoError(t, err)
		require.Len(t, els, 2)
		a, _, _ := els[0].Attribute(ctx, "id")
		b, _, _ := els[1].Attribute(ctx, "id")
		assert.Equal(t, []string{"free", "pro"}, []string{a, b})
	})

	t.Run("no match is an empty result", func(t *testing.T) {
		els, err := doc.Query(ctx, "//table")
		require.NoError(t, err)
		assert.Empty(t, els)
	})

	t.Run("text nodes are skipped", func(t *testing.T) {
		els, err := doc.Query(ctx, "//p/text()")
		require.NoError(t, err)
		assert.Empty(t, els)
	})

	t.Run("invalid selector", func(t *testing.T) {
		_, err := doc.Query(ctx, "//div[@id='x'")
		assert.ErrorIs(t, err, driver.ErrInvalidSelector)
		assert.True(t, driver.IsFatal(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := doc.Query(cctx, "//p")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("handles to the same node share an id", func(t *testing.T) {
		a := one(t, doc, "//p[@id='outside']")
		b := one(t, doc, "//*[text()[.='Free text']]")
		assert.Equal(t, a.ID(), b.ID())
		assert.NotEqual(t, a.ID(), one(t, doc, "//input[@id='user']").ID())
	})
}

func TestElementReads(t *testing.T) {
	doc := newDoc(t)
	ctx := context.Background()

	user := one(t, doc, "//*[@id='user']")
	v, ok, err := user.Attribute(ctx, "value")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bob", v)

	_, ok, err = user.Attribute(ctx, "placeholder")
	require.NoError(t, err)
	assert.False(t, ok)

	notes := one(t, doc, "//textarea")
	v, ok, _ = notes.Attribute(ctx, "value")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	sized := one(t, doc, "//*[@id='sized']")
	text, err := sized.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Some text", text)
	color, _ := sized.CSSValue(ctx, "Color")
	assert.Equal(t, "red", color)
	rect, err := sized.Rect(ctx)
	require.NoError(t, err)
	assert.Equal(t, driver.Rect{Width: 120, Height: 30}, rect)

	tag, _ := one(t, doc, "//select").TagName(ctx)
	assert.Equal(t, "select", tag)

	hiddenText, err := one(t, doc, "//*[@id='inner']").Text(ctx)
	require.NoError(t, err)
	assert.Empty(t, hiddenText, "hidden elements have no rendered text")
}

func TestVisibility(t *testing.T) {
	doc := newDoc(t)
	ctx := context.Background()

	tests := []struct {
		id    string
		shown bool
	}{
		{"user", true},
		{"token", false},
		{"inner", false},
		{"hidden-attr", false},
		{"invisible", false},
		{"sized", true},
		{"empty-box", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			shown, err := one(t, doc, "//*[@id='"+tt.id+"']").IsDisplayed(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.shown, shown)
		})
	}
}

func TestEnabledAndSelected(t *testing.T) {
	doc := newDoc(t)
	ctx := context.Background()

	enabled, _ := one(t, doc, "//*[@id='go']").IsEnabled(ctx)
	assert.False(t, enabled)
	enabled, _ = one(t, doc, "//*[@id='in-fieldset']").IsEnabled(ctx)
	assert.False(t, enabled)
	enabled, _ = one(t, doc, "//*[@id='user']").IsEnabled(ctx)
	assert.True(t, enabled)

	selected, _ := one(t, doc, "//*[@id='free']").IsSelected(ctx)
	assert.True(t, selected)
	selected, _ = one(t, doc, "//*[@id='red']").IsSelected(ctx)
	assert.True(t, selected)
	selected, _ = one(t, doc, "//*[@id='remember']").IsSelected(ctx)
	assert.False(t, selected)
}

func TestInteractions(t *testing.T) {
	ctx := context.Background()

	t.Run("checkbox toggles", func(t *testing.T) {
		doc := newDoc(t)
		box := one(t, doc, "//*[@id='remember']")
		require.NoError(t, box.Click(ctx))
		sel, _ := box.IsSelected(ctx)
		assert.True(t, sel)
		require.NoError(t, box.Click(ctx))
		sel, _ = box.IsSelected(ctx)
		assert.False(t, sel)
	})

	t.Run("radio clears its group", func(t *testing.T) {
		doc := newDoc(t)
		require.NoError(t, one(t, doc, "//*[@id='pro']").Click(ctx))
		free, _ := one(t, doc, "//*[@id='free']").IsSelected(ctx)
		pro, _ := one(t, doc, "//*[@id='pro']").IsSelected(ctx)
		assert.False(t, free)
		assert.True(t, pro)
	})

	t.Run("option selection", func(t *testing.T) {
		doc := newDoc(t)
		require.NoError(t, one(t, doc, "//*[@id='blue']").Click(ctx))
		red, _ := one(t, doc, "//*[@id='red']").IsSelected(ctx)
		assert.False(t, red)
	})

	t.Run("typing and clearing", func(t *testing.T) {
		doc := newDoc(t)
		user := one(t, doc, "//*[@id='user']")
		require.NoError(t, user.SendKeys(ctx, "by"))
		v, _, _ := user.Attribute(ctx, "value")
		assert.Equal(t, "bobby", v)
		require.NoError(t, user.Clear(ctx))
		v, _, _ = user.Attribute(ctx, "value")
		assert.Empty(t, v)

		notes := one(t, doc, "//textarea")
		require.NoError(t, notes.Clear(ctx))
		require.NoError(t, notes.SendKeys(ctx, "line"))
		v, _, _ = notes.Attribute(ctx, "value")
		assert.Equal(t, "line", v)
	})

	t.Run("non interactable targets", func(t *testing.T) {
		doc := newDoc(t)
		assert.ErrorIs(t, one(t, doc, "//*[@id='go']").Click(ctx), driver.ErrNotInteractable)
		assert.ErrorIs(t, one(t, doc, "//*[@id='inner']").Click(ctx), driver.ErrNotInteractable)
		assert.ErrorIs(t, one(t, doc, "//*[@id='remember']").SendKeys(ctx, "x"), driver.ErrNotInteractable)
		assert.ErrorIs(t, one(t, doc, "//*[@id='outside']").Submit(ctx), driver.ErrNotInteractable)
	})

	t.Run("submit records the form", func(t *testing.T) {
		doc := newDoc(t)
		require.NoError(t, one(t, doc, "//*[@id='user']").Submit(ctx))
		events := doc.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "submit", events[0].Type)
		assert.Equal(t, "login", events[0].Value)
	})

	t.Run("events are recorded in order", func(t *testing.T) {
		doc := newDoc(t)
		user := one(t, doc, "//*[@id='user']")
		require.NoError(t, user.Hover(ctx))
		require.NoError(t, user.Click(ctx))
		require.NoError(t, user.DoubleClick(ctx))
		var types []string
		for _, ev := range doc.Events() {
			types = append(types, ev.Type)
			assert.Equal(t, user.ID(), ev.ElementID)
		}
		assert.Equal(t, []string{"hover", "click", "dblclick"}, types)
	})
}

func TestMutateMakesHandlesStale(t *testing.T) {
	doc := newDoc(t)
	ctx := context.Background()
	p := one(t, doc, "//*[@id='outside']")

	doc.Mutate(func(root *html.Node) {
		n := htmlquery.FindOne(root, "//p[@id='outside']")
		n.Parent.RemoveChild(n)
	})

	_, err := p.Text(ctx)
	assert.ErrorIs(t, err, driver.ErrStaleElement)
	assert.ErrorIs(t, p.Click(ctx), driver.ErrStaleElement)
	assert.True(t, driver.IsTransient(err))
	assert.NotContains(t, doc.HTML(), "Free text")
}

func TestExecuteScriptUnsupported(t *testing.T) {
	_, err := newDoc(t).ExecuteScript(context.Background(), "1+1")
	assert.ErrorIs(t, err, driver.ErrUnsupported)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(formPage), 0o600))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	els, err := doc.Query(context.Background(), "//form")
	require.NoError(t, err)
	assert.Len(t, els, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}
