// Package video turns author-supplied video links into iframe-safe embed
// URLs.
package video

import (
	"regexp"
	"strings"
)

const (
	embedMarker   = "/embed/"
	embedTemplate = "https://www.youtube.com/embed/"
)

// Tried in order, first match wins: watch?v=, short link, embed path,
// shorts path.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)youtube\.com/watch\?(?:[^#]*&)?v=([^&\n?#/]+)`),
	regexp.MustCompile(`(?i)youtu\.be/([^&\n?#/]+)`),
	regexp.MustCompile(`(?i)youtube\.com/embed/([^&\n?#/]+)`),
	regexp.MustCompile(`(?i)youtube\.com/shorts/([^&\n?#/]+)`),
}

// EmbedURL derives the canonical embed URL for raw. An empty result means
// no video frame should be rendered at all: blank input, or a link with no
// recognisable video id. Links that already point at an embed path are
// returned as given (surrounding whitespace removed).
func EmbedURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if strings.Contains(u, embedMarker) {
		return u
	}

	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(u); m != nil && m[1] != "" {
			return embedTemplate + m[1]
		}
	}

	return ""
}
