// internal/locator/criteria.go
package locator

import "strings"

// SearchType selects how label text is matched. One match mode (Equals,
// Contains or StartsWith) can be combined with the Trim and DeepChildNode
// modifiers.
type SearchType uint8

const (
	// Equals matches the exact text. It is the mode used when no mode bit is set.
	Equals SearchType = 1 << iota
	// Contains matches any text containing the label.
	Contains
	// StartsWith matches text beginning with the label.
	StartsWith
	// Trim compares whitespace-normalized text on both sides.
	Trim
	// DeepChildNode compares the element's full string value (all
	// descendant text) instead of its direct text nodes.
	DeepChildNode
)

// Has reports whether every bit of flag is set.
func (s SearchType) Has(flag SearchType) bool {
	return s&flag == flag
}

// Mode returns the match mode with modifiers stripped. StartsWith wins over
// Contains, which wins over Equals.
func (s SearchType) Mode() SearchType {
	switch {
	case s.Has(StartsWith):
		return StartsWith
	case s.Has(Contains):
		return Contains
	default:
		return Equals
	}
}

func (s SearchType) String() string {
	var parts []string
	switch s.Mode() {
	case StartsWith:
		parts = append(parts, "starts-with")
	case Contains:
		parts = append(parts, "contains")
	default:
		parts = append(parts, "equals")
	}
	if s.Has(Trim) {
		parts = append(parts, "trim")
	}
	if s.Has(DeepChildNode) {
		parts = append(parts, "deep")
	}
	return strings.Join(parts, ",")
}

// ParseSearchType parses a comma separated list such as "contains,trim".
func ParseSearchType(raw string) (SearchType, bool) {
	var s SearchType
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "", "equals":
			s |= Equals
		case "contains":
			s |= Contains
		case "starts-with", "startswith":
			s |= StartsWith
		case "trim":
			s |= Trim
		case "deep", "deep-child-node":
			s |= DeepChildNode
		default:
			return 0, false
		}
	}
	return s, true
}

// LabelPosition is the XPath axis fragment placed between a <label> step and
// the element step when the label text lives on a separate label node. The
// empty value means the text belongs to the element itself.
type LabelPosition string

const (
	LabelSelf LabelPosition = ""
	// LabelAncestor: the element is nested inside the label.
	LabelAncestor LabelPosition = "//"
	// LabelFollowingSibling: the element is a sibling after the label.
	LabelFollowingSibling LabelPosition = "/following-sibling::"
	// LabelSiblingDescendant: the element sits inside the sibling right
	// after the label.
	LabelSiblingDescendant LabelPosition = "/following-sibling::*[1]//"
)

// ParseLabelPosition accepts self, ancestor, following-sibling and
// sibling-descendant.
func ParseLabelPosition(raw string) (LabelPosition, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "self":
		return LabelSelf, true
	case "ancestor":
		return LabelAncestor, true
	case "following-sibling", "sibling":
		return LabelFollowingSibling, true
	case "sibling-descendant":
		return LabelSiblingDescendant, true
	}
	return "", false
}

// Label is a text criterion.
type Label struct {
	Text   string
	Search SearchType
}

// Attribute is an exact attribute equality criterion.
type Attribute struct {
	Name  string
	Value string
}

// Criteria is the set of predicates describing one element. All predicates
// are AND-combined; the zero value matches any element.
type Criteria struct {
	Tag            string
	ID             string
	Classes        []string
	ExcludeClasses []string
	Type           string
	Attributes     []Attribute
	Label          *Label
	LabelPosition  LabelPosition
	// Visibility rejects matches that are present but not displayed.
	Visibility bool
	// Position selects the n-th (1-based) match of the step. Zero disables it.
	Position int
	// Info is a human readable name used in logs.
	Info string
}

func (c Criteria) clone() Criteria {
	out := c
	out.Classes = append([]string(nil), c.Classes...)
	out.ExcludeClasses = append([]string(nil), c.ExcludeClasses...)
	out.Attributes = append([]Attribute(nil), c.Attributes...)
	if c.Label != nil {
		lbl := *c.Label
		out.Label = &lbl
	}
	return out
}
