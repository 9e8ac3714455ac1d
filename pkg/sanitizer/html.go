// Package sanitizer derives plain text from HTML message bodies.
package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once

	// blockBoundary matches tags after which a line break belongs in plain text.
	blockBoundary = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|tr|table|blockquote|pre)>`)
	spaceRun      = regexp.MustCompile(`[ \t]+`)
	blankRun      = regexp.MustCompile(`\n{3,}`)
)

func initPolicies() {
	initOnce.Do(func() {
		// StrictPolicy strips ALL HTML; script and style contents are dropped entirely.
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// StripHTML removes all HTML tags and returns the text content with entities decoded.
func StripHTML(s string) string {
	initPolicies()
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// PlainText converts an HTML body into a readable plain text alternative.
// Block-level elements become line breaks, runs of spaces collapse and
// at most one empty line separates paragraphs.
func PlainText(s string) string {
	text := StripHTML(blockBoundary.ReplaceAllString(s, "$0\n"))

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankRun.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
