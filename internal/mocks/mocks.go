// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/digoaraujo/Testy/internal/driver"
)

// -- Driver Mock --

// MockDriver mocks driver.Driver.
type MockDriver struct {
	mock.Mock
}

func (m *MockDriver) Query(ctx context.Context, selector string) ([]driver.Element, error) {
	args := m.Called(ctx, selector)
	var els []driver.Element
	if v := args.Get(0); v != nil {
		els = v.([]driver.Element)
	}
	return els, args.Error(1)
}

func (m *MockDriver) ExecuteScript(ctx context.Context, script string) (json.RawMessage, error) {
	args := m.Called(ctx, script)
	var raw json.RawMessage
	if v := args.Get(0); v != nil {
		raw = v.(json.RawMessage)
	}
	return raw, args.Error(1)
}

// -- Element Mock --

// MockElement mocks driver.Element. ID is fixed at construction so handles
// can be compared without setting an expectation.
type MockElement struct {
	mock.Mock
	NodeID string
}

// NewMockElement creates a MockElement with the given node id.
func NewMockElement(id string) *MockElement {
	return &MockElement{NodeID: id}
}

func (m *MockElement) ID() string {
	return m.NodeID
}

func (m *MockElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockElement) Text(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockElement) TagName(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockElement) CSSValue(ctx context.Context, property string) (string, error) {
	args := m.Called(ctx, property)
	return args.String(0), args.Error(1)
}

func (m *MockElement) Rect(ctx context.Context) (driver.Rect, error) {
	args := m.Called(ctx)
	return args.Get(0).(driver.Rect), args.Error(1)
}

func (m *MockElement) Click(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockElement) DoubleClick(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockElement) SendKeys(ctx context.Context, keys string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockElement) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockElement) Submit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockElement) Hover(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockElement) IsSelected(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockElement) IsDisplayed(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockElement) IsEnabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// -- Clipboard Mock --

// MockClipboard mocks clipboard.Clipboard.
type MockClipboard struct {
	mock.Mock
}

func (m *MockClipboard) Copy(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

func (m *MockClipboard) Paste(ctx context.Context, target driver.Element) error {
	return m.Called(ctx, target).Error(0)
}

// Elements is a small helper for building Query return values.
func Elements(els ...driver.Element) []driver.Element {
	return els
}
