// internal/locator/xpath.go
package locator

import (
	"strconv"
	"strings"
)

// Literal renders s as an XPath 1.0 string literal. XPath has no escape
// sequence for the delimiter, so text containing an apostrophe is split on it
// and rebuilt with concat().
func Literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	var args []string
	for i, piece := range strings.Split(s, "'") {
		if i > 0 {
			args = append(args, `"'"`)
		}
		if piece != "" {
			args = append(args, "'"+piece+"'")
		}
	}
	if len(args) == 1 {
		return args[0]
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}

// classPredicate matches a whole class token, so "btn" does not match "btnx".
func classPredicate(token string) string {
	return "contains(concat(' ', normalize-space(@class), ' '), " + Literal(" "+token+" ") + ")"
}

func labelPredicate(lbl Label) string {
	text := lbl.Text
	subject := "."
	if lbl.Search.Has(Trim) {
		subject = "normalize-space(.)"
		text = strings.Join(strings.Fields(text), " ")
	}
	lit := Literal(text)

	var cond string
	switch lbl.Search.Mode() {
	case StartsWith:
		cond = "starts-with(" + subject + "," + lit + ")"
	case Contains:
		cond = "contains(" + subject + "," + lit + ")"
	default:
		cond = subject + "=" + lit
	}

	if lbl.Search.Has(DeepChildNode) {
		return cond
	}
	return "text()[" + cond + "]"
}

// predicates returns the element's own conditions in their fixed order:
// id, classes, excluded classes, type, attributes, self label.
func (c Criteria) predicates() []string {
	var preds []string
	if c.ID != "" {
		preds = append(preds, "@id="+Literal(c.ID))
	}
	for _, cls := range c.Classes {
		preds = append(preds, classPredicate(cls))
	}
	for _, cls := range c.ExcludeClasses {
		preds = append(preds, "not("+classPredicate(cls)+")")
	}
	if c.Type != "" {
		preds = append(preds, "@type="+Literal(c.Type))
	}
	for _, attr := range c.Attributes {
		preds = append(preds, "@"+attr.Name+"="+Literal(attr.Value))
	}
	if c.Label != nil && c.LabelPosition == LabelSelf {
		preds = append(preds, labelPredicate(*c.Label))
	}
	return preds
}

// step compiles the criteria into a single descendant step.
func (c Criteria) step() string {
	tag := c.Tag
	if tag == "" {
		tag = "*"
	}

	var b strings.Builder
	b.WriteString("//")
	if c.Label != nil && c.LabelPosition != LabelSelf {
		b.WriteString("label[")
		b.WriteString(labelPredicate(*c.Label))
		b.WriteString("]")
		b.WriteString(string(c.LabelPosition))
	}
	b.WriteString(tag)
	if preds := c.predicates(); len(preds) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(preds, " and "))
		b.WriteString("]")
	}
	if c.Position > 0 {
		b.WriteString("[" + strconv.Itoa(c.Position) + "]")
	}
	return b.String()
}

// Compile renders the locator, including its container chain, as an XPath
// expression. Equal criteria and containers always produce the same string.
func Compile(l *Locator) string {
	if l == nil {
		return "//*"
	}
	var b strings.Builder
	if container := l.Container(); container != nil {
		b.WriteString(Compile(container))
	}
	b.WriteString(l.Criteria().step())
	return b.String()
}
