// Package slug derives URL-friendly identifiers from article titles.
package slug

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// combining diacritical marks block
func isMark(r rune) bool { return r >= 0x0300 && r <= 0x036f }

// Make lowercases the title, strips diacritics, collapses every run of
// characters outside [a-z0-9] into a single hyphen and trims hyphens from
// both ends. Two titles may produce the same slug.
func Make(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isMark)))
	folded, _, err := transform.String(t, strings.ToLower(title))
	if err != nil {
		folded = strings.ToLower(title)
	}

	return strings.Trim(nonAlnum.ReplaceAllString(folded, "-"), "-")
}
