// Package content derives plain-text previews and cover images from the
// rich HTML bodies produced by the admin editor.
package content

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// ExcerptLength is the preview size used by the listing pages.
const ExcerptLength = 200

var blockEnd = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|blockquote|pre)>|<br\s*/?>`)

// Extractor provides plain-text extraction from editor HTML.
type Extractor struct {
	policy *bluemonday.Policy
}

func NewExtractor() *Extractor {
	return &Extractor{policy: bluemonday.StrictPolicy()}
}

// Text strips every tag from body and collapses whitespace.
func (e *Extractor) Text(body string) string {
	spaced := blockEnd.ReplaceAllString(body, "$0 ")
	text := html.UnescapeString(e.policy.Sanitize(spaced))

	return strings.Join(strings.Fields(text), " ")
}

// Excerpt returns at most max runes of body text, suffixed with an
// ellipsis when cut.
func (e *Extractor) Excerpt(body string, max int) string {
	text := e.Text(body)
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}

	return strings.TrimSpace(string(runes[:max])) + "…"
}

// FirstImage returns the src of the first <img> in body, or "".
func FirstImage(body string) string {
	if !strings.Contains(body, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")

	return strings.TrimSpace(src)
}
