// internal/driver/cdp/browser.go
package cdp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/digoaraujo/Testy/internal/config"
)

// Browser owns a Chrome process, or a connection to a remote one, and hands
// out tabs as Drivers.
type Browser struct {
	cfg         config.BrowserConfig
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// allocatorFlags returns the command line switches for a local Chrome.
// Entries of cfg.Args ("--name" or "--name=value") come last and win.
func allocatorFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		"headless":                 cfg.Headless,
		"disable-gpu":              cfg.Headless,
		"no-sandbox":               true,
		"enable-automation":        true,
		"disable-popup-blocking":   true,
		"hide-scrollbars":          cfg.Headless,
		"disable-extensions":       true,
		"no-first-run":             true,
		"no-default-browser-check": true,
	}
	for _, arg := range cfg.Args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			flags[name] = value
		} else {
			flags[arg] = true
		}
	}
	return flags
}

// AllocatorOptions builds the exec allocator options for cfg.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	flags := allocatorFlags(cfg)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}
	return opts
}

// Launch starts Chrome, or attaches to cfg.RemoteURL when set. The browser
// lives until Close or until ctx is canceled.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Browser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("browser")

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if cfg.RemoteURL != "" {
		logger.Info("Attaching to remote browser.", zap.String("url", cfg.RemoteURL))
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		logger.Info("Launching browser.", zap.Bool("headless", cfg.Headless), zap.String("exec_path", cfg.ExecPath))
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, AllocatorOptions(cfg)...)
	}

	sugar := logger.Sugar()
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Errorf),
	)
	// The first Run starts the process and opens the initial tab.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Browser{
		cfg:         cfg,
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      logger,
	}, nil
}

// NewPage opens a new tab. ctx bounds the opening only; the tab lives until
// its Driver is closed or the browser goes away.
func (b *Browser) NewPage(ctx context.Context) (*Driver, error) {
	pageCtx, cancel := chromedp.NewContext(b.ctx)

	openCtx, cancelOpen := CombineContext(pageCtx, ctx)
	defer cancelOpen()
	if err := chromedp.Run(openCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	if b.cfg.GrantClipboard {
		grant := browser.GrantPermissions([]browser.PermissionType{
			browser.PermissionTypeClipboardReadWrite,
			browser.PermissionTypeClipboardSanitizedWrite,
		})
		if err := chromedp.Run(openCtx, grant); err != nil {
			// Pasting will fail later; typing still works.
			b.logger.Warn("Could not grant clipboard permissions.", zap.Error(err))
		}
	}
	return newDriver(pageCtx, cancel, b.cfg.ActionTimeout, b.cfg.NavigationTimeout, b.logger), nil
}

// Close shuts the browser down, or detaches from a remote one.
func (b *Browser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
