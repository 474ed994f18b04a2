// File: cmd/flags.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/digoaraujo/Testy/internal/locator"
)

// locatorFlags collects the criteria flags shared by xpath and probe.
type locatorFlags struct {
	id               string
	classes          []string
	excludeClasses   []string
	tag              string
	typ              string
	label            string
	search           string
	labelPosition    string
	visible          bool
	position         int
	info             string
	attrs            []string
	containerID      string
	containerClasses []string
}

func (f *locatorFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.id, "id", "", "element id")
	fs.StringSliceVar(&f.classes, "class", nil, "required class token (repeatable or comma separated)")
	fs.StringSliceVar(&f.excludeClasses, "not-class", nil, "class token the element must not carry")
	fs.StringVar(&f.tag, "tag", "", "element tag name (default any)")
	fs.StringVar(&f.typ, "type", "", "value of the type attribute")
	fs.StringVar(&f.label, "label", "", "text of the element or of its label")
	fs.StringVar(&f.search, "search", "equals", "label matching: equals|contains|starts-with, optionally with ,trim and ,deep")
	fs.StringVar(&f.labelPosition, "label-position", "self", "where the label sits: self|ancestor|following-sibling|sibling-descendant")
	fs.BoolVar(&f.visible, "visible", false, "only accept displayed elements")
	fs.IntVar(&f.position, "position", 0, "1-based index among the matches of the step")
	fs.StringVar(&f.info, "info", "", "name used in log lines")
	fs.StringArrayVar(&f.attrs, "attr-eq", nil, "exact attribute match as name=value (repeatable)")
	fs.StringVar(&f.containerID, "container-id", "", "id of the enclosing element")
	fs.StringSliceVar(&f.containerClasses, "container-class", nil, "class token of the enclosing element")
}

// build turns the flags into a locator, with a container when any container
// flag is set.
func (f *locatorFlags) build() (*locator.Locator, error) {
	l := locator.New()
	if f.containerID != "" || len(f.containerClasses) > 0 {
		container := locator.New()
		if f.containerID != "" {
			container.SetID(f.containerID)
		}
		if len(f.containerClasses) > 0 {
			container.SetClasses(f.containerClasses...)
		}
		l.SetContainer(container)
	}

	if f.tag != "" {
		l.SetTag(f.tag)
	}
	if f.id != "" {
		l.SetID(f.id)
	}
	if len(f.classes) > 0 {
		l.SetClasses(f.classes...)
	}
	if len(f.excludeClasses) > 0 {
		l.SetExcludeClasses(f.excludeClasses...)
	}
	if f.typ != "" {
		l.SetType(f.typ)
	}
	for _, kv := range f.attrs {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --attr-eq %q: expected name=value", kv)
		}
		l.SetAttribute(strings.TrimSpace(name), value)
	}

	if f.label != "" {
		search, ok := locator.ParseSearchType(f.search)
		if !ok {
			return nil, fmt.Errorf("invalid --search %q", f.search)
		}
		pos, ok := locator.ParseLabelPosition(f.labelPosition)
		if !ok {
			return nil, fmt.Errorf("invalid --label-position %q", f.labelPosition)
		}
		l.SetLabel(f.label, search).SetLabelPosition(pos)
	}

	if f.position < 0 {
		return nil, fmt.Errorf("invalid --position %d: must be 1 or greater", f.position)
	}
	l.SetPosition(f.position).SetVisibility(f.visible)
	if f.info != "" {
		l.SetInfo(f.info)
	}
	return l, nil
}
