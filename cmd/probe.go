// File: cmd/probe.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/digoaraujo/Testy/internal/clipboard"
	"github.com/digoaraujo/Testy/internal/config"
	"github.com/digoaraujo/Testy/internal/driver"
	"github.com/digoaraujo/Testy/internal/driver/cdp"
	"github.com/digoaraujo/Testy/internal/driver/static"
	"github.com/digoaraujo/Testy/internal/locator"
	"github.com/digoaraujo/Testy/internal/observability"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// probeReport is what probe prints for a locator.
type probeReport struct {
	Locator    string            `json:"locator"`
	XPath      string            `json:"xpath"`
	Found      bool              `json:"found"`
	Matches    int               `json:"matches"`
	Tag        string            `json:"tag,omitempty"`
	ID         string            `json:"id,omitempty"`
	Text       string            `json:"text,omitempty"`
	Displayed  bool              `json:"displayed"`
	Enabled    bool              `json:"enabled"`
	Selected   bool              `json:"selected"`
	Rect       *driver.Rect      `json:"rect,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func newProbeCmd() *cobra.Command {
	var (
		flags   locatorFlags
		file    string
		url     string
		timeout time.Duration
		attrs   []string
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Resolve a locator against an HTML file or a live page and print what it finds",
		Example: `  testy probe --file login.html --tag input --label "User name" --search equals,trim --label-position sibling-descendant
  testy probe --url https://example.com --tag a --label More --search contains --attr href`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (url == "") {
				return errors.New("exactly one of --file or --url is required")
			}
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			l, err := flags.build()
			if err != nil {
				return err
			}

			logger := observability.GetLogger()
			drv, clip, closeDriver, err := openDriver(ctx, cfg, file, url, logger)
			if err != nil {
				return err
			}
			defer closeDriver()

			opts := []locator.Option{locator.WithLogger(logger)}
			if clip != nil {
				opts = append(opts, locator.WithClipboard(clip))
			}
			exec := locator.NewExecutor(drv, cfg.Locator().Settings(), opts...)
			l.Bind(exec)

			report := probe(ctx, exec, l, timeout, attrs)
			if err := writeReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Found {
				return locator.NewElementNotFoundError(report.XPath)
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&file, "file", "", "static HTML file to probe")
	cmd.Flags().StringVar(&url, "url", "", "page to open in Chrome and probe")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "how long to wait for the element (default locator.default_timeout)")
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "attribute to include in the report (repeatable)")
	return cmd
}

// openDriver returns the driver for the source, an optional clipboard and a
// function releasing everything.
func openDriver(ctx context.Context, cfg *config.Config, file, url string, logger *zap.Logger) (driver.Driver, *clipboard.Exclusive, func(), error) {
	if file != "" {
		path, err := homedir.Expand(file)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("error expanding path: %w", err)
		}
		doc, err := static.LoadFile(path, static.WithLogger(logger))
		if err != nil {
			return nil, nil, nil, err
		}
		return doc, nil, func() {}, nil
	}

	b, err := cdp.Launch(ctx, cfg.Browser(), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	page, err := b.NewPage(ctx)
	if err != nil {
		_ = b.Close()
		return nil, nil, nil, err
	}
	closeAll := func() {
		page.Close()
		if err := b.Close(); err != nil {
			logger.Debug("Browser did not close cleanly.", zap.Error(err))
		}
	}
	if err := page.Navigate(ctx, url); err != nil {
		closeAll()
		return nil, nil, nil, fmt.Errorf("failed to open %s: %w", url, err)
	}
	clip := clipboard.NewExclusive(cdp.NewClipboard(page), logger)
	return page, clip, closeAll, nil
}

func probe(ctx context.Context, exec *locator.Executor, l *locator.Locator, timeout time.Duration, attrs []string) probeReport {
	r := probeReport{Locator: l.Name(), XPath: l.XPath()}
	if !exec.WaitFor(ctx, l, timeout) {
		return r
	}
	r.Found = true
	r.Matches = exec.Size(ctx, l)
	r.Tag, _ = exec.GetTagName(ctx, l)
	r.ID, _ = exec.GetAttribute(ctx, l, "id")
	r.Text, _ = exec.GetText(ctx, l)
	r.Displayed = exec.IsDisplayed(ctx, l)
	r.Enabled = exec.IsEnabled(ctx, l)
	r.Selected = exec.IsSelected(ctx, l)
	if rect, ok := exec.GetRect(ctx, l); ok {
		r.Rect = &rect
	}
	for _, name := range attrs {
		if v, ok := exec.GetAttribute(ctx, l, name); ok {
			if r.Attributes == nil {
				r.Attributes = make(map[string]string, len(attrs))
			}
			r.Attributes[name] = v
		}
	}
	return r
}

func writeReport(w io.Writer, r probeReport) error {
	enc := jsonCodec.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
