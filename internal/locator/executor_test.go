// internal/locator/executor_test.go
package locator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/digoaraujo/Testy/internal/clipboard"
	"github.com/digoaraujo/Testy/internal/driver"
	"github.com/digoaraujo/Testy/internal/mocks"
	"github.com/digoaraujo/Testy/internal/retry"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.PollInterval = 5 * time.Millisecond
	s.RetryPause = time.Millisecond
	s.DefaultTimeout = 100 * time.Millisecond
	return s
}

func newTestExecutor(t *testing.T, drv driver.Driver, opts ...Option) *Executor {
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return NewExecutor(drv, testSettings(), opts...)
}

const scenarioPage = `<html><body>
<div class="toolbar">
  <button class="btn primary large" id="a">Alpha</button>
  <button class="btnx primary" id="b">Beta</button>
</div>
<form id="form1">
  <input id="name" name="name" type="text" value="old">
  <input id="password" name="password" type="password">
  <button id="submit1">Please Submit Now</button>
  <button id="cancel1">Cancel</button>
</form>
<form id="form2">
  <button id="submit2">Please Submit Now</button>
</form>
</body></html>`

func TestScenario_ClassTokens(t *testing.T) {
	doc := loadDoc(t, scenarioPage)
	e := newTestExecutor(t, doc)
	ctx := context.Background()

	l := New().SetClasses("btn", "primary").Bind(e)
	assert.Equal(t, 1, e.Size(ctx, l))
	text, ok := l.GetText(ctx)
	require.True(t, ok)
	assert.Equal(t, "Alpha", text)

	id, ok := e.GetAttributeID(ctx, l)
	require.True(t, ok)
	assert.Equal(t, "a", id)
}

func TestScenario_ContainerAndContainsLabel(t *testing.T) {
	doc := loadDoc(t, scenarioPage)
	e := newTestExecutor(t, doc)
	ctx := context.Background()

	form := New().SetID("form1").Bind(e)
	submit := New().SetContainer(form).SetTag("button").SetLabel("Submit", Contains)

	assert.Equal(t, 1, e.Size(ctx, submit))
	require.True(t, submit.Click(ctx))

	events := doc.Events()
	require.Len(t, events, 1)
	cached, _ := submit.Cached()
	require.NotNil(t, cached)
	assert.Equal(t, cached.ID(), events[0].ElementID)
	id, _, _ := cached.Attribute(ctx, "id")
	assert.Equal(t, "submit1", id)

	cancel := New().SetContainer(form).SetTag("button").SetLabel("Cancel")
	text, ok := cancel.GetText(ctx)
	assert.True(t, ok)
	assert.Equal(t, "Cancel", text)
}

func TestScenario_Visibility(t *testing.T) {
	doc := loadDoc(t, `<div hidden><span id="ghost">boo</span></div>`)
	e := newTestExecutor(t, doc)
	ctx := context.Background()

	assert.False(t, New().SetID("ghost").SetVisibility(true).Bind(e).WaitFor(ctx, 50*time.Millisecond))

	start := time.Now()
	assert.True(t, New().SetID("ghost").Bind(e).WaitFor(ctx, 5*time.Second))
	assert.Less(t, time.Since(start), time.Second)
}

func TestStrictExhaustion(t *testing.T) {
	drv := new(mocks.MockDriver)
	drv.On("Query", mock.Anything, mock.Anything).Return(nil, nil)
	e := newTestExecutor(t, drv)

	err := New().SetID("missing").Bind(e).SetValue(context.Background(), "x")
	require.Error(t, err)

	var exhausted *retry.ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 6, exhausted.Attempts)
	assert.Equal(t, "setValue", exhausted.Op)

	var notFound *ElementNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "//*[@id='missing']", notFound.Selector)
	drv.AssertNumberOfCalls(t, "Query", 6)
}

func TestStrictOperationsPropagate(t *testing.T) {
	el := mocks.NewMockElement("n")
	el.On("Clear", mock.Anything).Return(driver.ErrStaleElement)
	el.On("Submit", mock.Anything).Return(driver.ErrStaleElement)
	drv := new(mocks.MockDriver)
	drv.On("Query", mock.Anything, mock.Anything).Return(mocks.Elements(el), nil)
	e := newTestExecutor(t, drv)
	l := New().SetID("f").Bind(e)

	assert.ErrorIs(t, l.Clear(context.Background()), driver.ErrStaleElement)
	assert.ErrorIs(t, l.Submit(context.Background()), driver.ErrStaleElement)
	el.AssertNumberOfCalls(t, "Clear", 6)
	el.AssertNumberOfCalls(t, "Submit", 6)
}

func TestLenientExhaustion(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	drv := new(mocks.MockDriver)
	drv.On("Query", mock.Anything, mock.Anything).Return(nil, nil)
	e := NewExecutor(drv, testSettings(), WithLogger(zap.New(core)))
	l := New().SetID("missing").Bind(e)
	ctx := context.Background()

	assert.False(t, l.Click(ctx))
	drv.AssertNumberOfCalls(t, "Query", 6)

	v, ok := l.GetAttribute(ctx, "title")
	assert.False(t, ok)
	assert.Empty(t, v)
	drv.AssertNumberOfCalls(t, "Query", 11)

	text, ok := l.GetText(ctx)
	assert.False(t, ok)
	assert.Empty(t, text)
	assert.False(t, l.IsSelected(ctx))
	assert.False(t, l.IsDisplayed(ctx))
	assert.False(t, l.IsEnabled(ctx))

	suppressed := logs.FilterMessage("Operation gave up, result suppressed.").All()
	require.NotEmpty(t, suppressed)
	assert.Equal(t, "click", suppressed[0].ContextMap()["op"])
}

func TestReads(t *testing.T) {
	doc := loadDoc(t, `<form><input id="q" type="checkbox" checked title="Query" style="color: blue"><input id="off" disabled></form>`)
	e := newTestExecutor(t, doc)
	ctx := context.Background()
	q := New().SetID("q").Bind(e)

	v, ok := q.GetAttribute(ctx, "title")
	assert.True(t, ok)
	assert.Equal(t, "Query", v)
	_, ok = q.GetAttribute(ctx, "placeholder")
	assert.False(t, ok, "absent attribute")

	tag, ok := e.GetTagName(ctx, q)
	assert.True(t, ok)
	assert.Equal(t, "input", tag)
	color, ok := e.GetCSSValue(ctx, q, "color")
	assert.True(t, ok)
	assert.Equal(t, "blue", color)
	_, ok = e.GetRect(ctx, q)
	assert.True(t, ok)

	assert.True(t, q.IsSelected(ctx))
	assert.True(t, q.IsDisplayed(ctx))
	assert.True(t, q.IsEnabled(ctx))
	assert.False(t, New().SetID("off").Bind(e).IsEnabled(ctx))
	assert.True(t, q.IsPresent(ctx))
	assert.True(t, e.Exists(ctx, q))
}

func TestGetAttributeIDWarnsOnMismatch(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	el := mocks.NewMockElement("n")
	el.On("Attribute", mock.Anything, "id").Return("other", true, nil)
	drv := new(mocks.MockDriver)
	drv.On("Query", mock.Anything, mock.Anything).Return(mocks.Elements(el), nil)
	e := NewExecutor(drv, testSettings(), WithLogger(zap.New(core)))

	id, ok := e.GetAttributeID(context.Background(), New().SetID("expected"))
	assert.True(t, ok)
	assert.Equal(t, "other", id)
	assert.Equal(t, 1, logs.FilterMessage("Locator id differs from the element id.").Len())
}

func TestClickRecoversWithHover(t *testing.T) {
	el := mocks.NewMockElement("n")
	el.On("Click", mock.Anything).Return(driver.ErrNotInteractable).Once()
	el.On("Click", mock.Anything).Return(nil).Once()
	el.On("Hover", mock.Anything).Return(nil).Once()
	drv := new(mocks.MockDriver)
	drv.On("Query", mock.Anything, mock.Anything).Return(mocks.Elements(el), nil)

	assert.True(t, New().SetID("b").Bind(newTestExecutor(t, drv)).Click(context.Background()))
	el.AssertExpectations(t)
}

func TestSendKeysEscalation(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	el := mocks.NewMockElement("n")
	el.On("SendKeys", mock.Anything, "abc").Return(driver.ErrNotInteractable)
	el.On("Hover", mock.Anything).Return(nil)
	el.On("Click", mock.Anything).Return(driver.ErrNotInteractable)
	drv := new(mocks.MockDriver)
	drv.On("Query", mock.Anything, mock.Anything).Return(mocks.Elements(el), nil)
	e := NewExecutor(drv, testSettings(), WithLogger(zap.New(core)))

	err := New().SetID("in").Bind(e).SendKeys(context.Background(), "abc")
	assert.ErrorIs(t, err, driver.ErrNotInteractable)
	el.AssertNumberOfCalls(t, "SendKeys", 3)
	el.AssertNumberOfCalls(t, "Hover", 2)
	el.AssertNumberOfCalls(t, "Click", 1)
	assert.Equal(t, 1, logs.FilterMessage("Element did not accept input.").Len())
}

func TestSendKeysClickThenType(t *testing.T) {
	el := mocks.NewMockElement("n")
	el.On("SendKeys", mock.Anything, "abc").Return(errors.New("cdp: key event rejected")).Times(3)
	el.On("Click", mock.Anything).Return(nil).Once()
	el.On("SendKeys", mock.Anything, "abc").Return(nil).Once()
	drv := new(mocks.MockDriver)
	drv.On("Query", mock.Anything, mock.Anything).Return(mocks.Elements(el), nil)

	err := New().SetID("in").Bind(newTestExecutor(t, drv)).SendKeys(context.Background(), "abc")
	require.NoError(t, err)
	el.AssertNumberOfCalls(t, "SendKeys", 4)
	el.AssertExpectations(t)
}

func TestSendKeysFatalSkipsClickThenType(t *testing.T) {
	el := mocks.NewMockElement("n")
	el.On("SendKeys", mock.Anything, "abc").Return(driver.ErrUnsupported)
	drv := new(mocks.MockDriver)
	drv.On("Query", mock.Anything, mock.Anything).Return(mocks.Elements(el), nil)

	err := New().SetID("in").Bind(newTestExecutor(t, drv)).SendKeys(context.Background(), "abc")
	assert.ErrorIs(t, err, driver.ErrUnsupported)
	el.AssertNumberOfCalls(t, "SendKeys", 1)
	el.AssertNotCalled(t, "Click", mock.Anything)
}

func TestSetValue(t *testing.T) {
	ctx := context.Background()

	t.Run("types short values", func(t *testing.T) {
		doc := loadDoc(t, scenarioPage)
		name := New().SetID("name").Bind(newTestExecutor(t, doc))
		require.NoError(t, name.SetValue(ctx, "new value"))
		v, ok := name.GetValue(ctx)
		assert.True(t, ok)
		assert.Equal(t, "new value", v)
	})

	t.Run("empty value only clears", func(t *testing.T) {
		doc := loadDoc(t, scenarioPage)
		name := New().SetID("name").Bind(newTestExecutor(t, doc))
		require.NoError(t, name.SetValue(ctx, ""))
		v, _ := name.GetValue(ctx)
		assert.Empty(t, v)
	})

	t.Run("pastes long values and types the last character", func(t *testing.T) {
		doc := loadDoc(t, scenarioPage)
		settings := testSettings()
		settings.MinCharsToType = 3
		e := NewExecutor(doc, settings,
			WithLogger(zaptest.NewLogger(t)),
			WithClipboard(clipboard.NewExclusive(clipboard.NewMemory(), nil)))
		name := New().SetID("name").Bind(e)

		require.NoError(t, name.SetValue(ctx, "héllo"))
		v, _ := name.GetValue(ctx)
		assert.Equal(t, "héllo", v)

		var keys []string
		for _, ev := range doc.Events() {
			if ev.Type == "keys" {
				keys = append(keys, ev.Value)
			}
		}
		assert.Equal(t, []string{"héll", "o"}, keys)
	})

	t.Run("without a clipboard long values are typed", func(t *testing.T) {
		doc := loadDoc(t, scenarioPage)
		settings := testSettings()
		settings.MinCharsToType = 1
		name := New().SetID("name").Bind(NewExecutor(doc, settings))
		require.NoError(t, name.SetValue(ctx, "typed"))
		events := doc.Events()
		require.Len(t, events, 2)
		assert.Equal(t, "clear", events[0].Type)
		assert.Equal(t, "typed", events[1].Value)
	})

	t.Run("clipboard failures are retried then propagated", func(t *testing.T) {
		doc := loadDoc(t, scenarioPage)
		clip := new(mocks.MockClipboard)
		clip.On("Copy", mock.Anything, mock.Anything).Return(driver.ErrNotInteractable)
		settings := testSettings()
		settings.MinCharsToType = 0
		name := New().SetID("name").Bind(NewExecutor(doc, settings, WithClipboard(clipboard.NewExclusive(clip, nil))))

		err := name.SetValue(ctx, "abc")
		assert.ErrorIs(t, err, driver.ErrNotInteractable)
		clip.AssertNumberOfCalls(t, "Copy", 6)
	})
}

func TestSetValueMasksExcludedParams(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	doc := loadDoc(t, scenarioPage)
	e := NewExecutor(doc, testSettings(), WithLogger(zap.New(core)))
	ctx := context.Background()

	require.NoError(t, New().SetID("password").SetInfo("Password").Bind(e).SetValue(ctx, "hunter2"))
	require.NoError(t, New().SetID("name").SetInfo("Name").Bind(e).SetValue(ctx, "bob"))

	entries := logs.FilterMessage("Set value.").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "*****", entries[0].ContextMap()["value"])
	assert.Equal(t, "bob", entries[1].ContextMap()["value"])
	assert.Equal(t, "Name", entries[1].ContextMap()["locator"])
}

func TestWaitForLogsXPath(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	doc := loadDoc(t, scenarioPage)
	e := NewExecutor(doc, testSettings(), WithLogger(zap.New(core)))

	l := New().SetID("nope").Bind(e)
	assert.False(t, l.WaitFor(context.Background(), 0), "zero uses the default timeout")

	entries := logs.FilterMessage("Element not found.").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "//*[@id='nope']", entries[0].ContextMap()["xpath"])
}

func TestDoubleClickFallsBackToEvent(t *testing.T) {
	el := mocks.NewMockElement("n")
	el.On("DoubleClick", mock.Anything).Return(driver.ErrNotInteractable)
	drv := new(mocks.MockDriver)
	drv.On("Query", mock.Anything, mock.Anything).Return(mocks.Elements(el), nil)
	drv.On("ExecuteScript", mock.Anything, mock.MatchedBy(func(s string) bool {
		return strings.Contains(s, `document.getElementById("row-1")`) && strings.Contains(s, `"dblclick"`)
	})).Return(json.RawMessage("true"), nil)

	assert.True(t, New().SetID("row-1").Bind(newTestExecutor(t, drv)).DoubleClick(context.Background()))
	drv.AssertExpectations(t)
}

func TestFireEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("xpath lookup inside containers", func(t *testing.T) {
		drv := new(mocks.MockDriver)
		drv.On("ExecuteScript", mock.Anything, mock.MatchedBy(func(s string) bool {
			return strings.Contains(s, "document.evaluate(") && strings.Contains(s, `"blur"`)
		})).Return(json.RawMessage("true"), nil)
		e := newTestExecutor(t, drv)
		l := New().SetContainer(New().SetID("form1")).SetID("name")
		assert.True(t, e.Blur(ctx, l))
	})

	t.Run("element missing in page", func(t *testing.T) {
		drv := new(mocks.MockDriver)
		drv.On("ExecuteScript", mock.Anything, mock.Anything).Return(json.RawMessage("false"), nil)
		assert.False(t, newTestExecutor(t, drv).Focus(ctx, New().SetID("x")))
	})

	t.Run("driver without scripting", func(t *testing.T) {
		doc := loadDoc(t, scenarioPage)
		assert.False(t, newTestExecutor(t, doc).FireEvent(ctx, New().SetID("name"), "change"))
	})
}

func TestMouseOver(t *testing.T) {
	doc := loadDoc(t, scenarioPage)
	assert.True(t, New().SetID("a").Bind(newTestExecutor(t, doc)).MouseOver(context.Background()))
	require.Len(t, doc.Events(), 1)
	assert.Equal(t, "hover", doc.Events()[0].Type)
}

func TestExecutorRespectsFatalErrors(t *testing.T) {
	drv := new(mocks.MockDriver)
	drv.On("Query", mock.Anything, mock.Anything).Return(nil, driver.ErrInvalidSelector)
	e := newTestExecutor(t, drv)
	l := New().SetID("x").Bind(e)

	assert.False(t, l.Click(context.Background()))
	err := l.SetValue(context.Background(), "v")
	assert.ErrorIs(t, err, driver.ErrInvalidSelector)
	drv.AssertNumberOfCalls(t, "Query", 2)
}
