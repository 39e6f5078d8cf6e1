// Package sanitize turns model-written markdown or HTML into plain text that
// is safe to embed in bot replies.
package sanitize

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	blockBreaks    = regexp.MustCompile(`<br\s*/?>|</?p>|</?div>|</?pre>|</?h[1-6]>|</?[uo]l>`)
	listItems      = regexp.MustCompile(`<li>`)
	blankLines     = regexp.MustCompile(`\n\s*\n+`)
	invisibleChars = strings.NewReplacer(
		"\u200B", "", "\u200C", "", "\u200D", "", "\u2060", "", "\uFEFF", "",
		"\u00AD", "", "\u2028", "\n", "\u2029", "\n",
	)
)

// Policy strips markdown and HTML formatting.
type Policy struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewPolicy creates a Policy that keeps no tags at all.
func NewPolicy() *Policy {
	return &Policy{
		policy:   bluemonday.StrictPolicy(),
		markdown: goldmark.New(),
	}
}

var defaultPolicy = NewPolicy()

// PlainText strips formatting from text with the default policy.
func PlainText(text string) string {
	return defaultPolicy.PlainText(text)
}

// PlainText renders text as markdown and keeps only its visible text. List
// items keep a "- " marker and paragraphs stay on separate lines.
func (p *Policy) PlainText(text string) string {
	text = strings.TrimSpace(invisibleChars.Replace(text))
	if text == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(text), &buf); err != nil {
		return text
	}

	out := listItems.ReplaceAllString(buf.String(), "- ")
	out = blockBreaks.ReplaceAllString(out, "\n")
	out = p.policy.Sanitize(out)
	out = blankLines.ReplaceAllString(out, "\n\n")
	out = html.UnescapeString(out)

	return strings.TrimSpace(out)
}
