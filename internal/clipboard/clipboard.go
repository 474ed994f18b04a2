// internal/clipboard/clipboard.go
package clipboard

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/digoaraujo/Testy/internal/driver"
)

// Clipboard moves text into an element through the system clipboard.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
	// Paste inserts the clipboard content into target.
	Paste(ctx context.Context, target driver.Element) error
}

// Exclusive serializes copy and paste pairs on a shared clipboard. The
// clipboard is process wide, so a second writer must not replace the content
// before the first paste has consumed it.
type Exclusive struct {
	clip   Clipboard
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// NewExclusive wraps clip.
func NewExclusive(clip Clipboard, logger *zap.Logger) *Exclusive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exclusive{
		clip:   clip,
		sem:    semaphore.NewWeighted(1),
		logger: logger.Named("clipboard"),
	}
}

// Transfer copies text and pastes it into target while holding the clipboard.
func (x *Exclusive) Transfer(ctx context.Context, text string, target driver.Element) error {
	if err := x.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire clipboard: %w", err)
	}
	defer x.sem.Release(1)

	if err := x.clip.Copy(ctx, text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	if err := x.clip.Paste(ctx, target); err != nil {
		return fmt.Errorf("failed to paste into element: %w", err)
	}
	x.logger.Debug("Pasted clipboard content.", zap.Int("runes", len([]rune(text))))
	return nil
}

// Memory is an in-process clipboard. Paste types the stored text into the
// target, which is how it behaves against drivers without a real clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Copy(_ context.Context, text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}

func (m *Memory) Paste(ctx context.Context, target driver.Element) error {
	return target.SendKeys(ctx, m.Text())
}

// Text returns the current content.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
