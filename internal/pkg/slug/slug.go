// Package slug turns titles into URL path segments.
package slug

import (
	"regexp"
	"strings"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[\s_]+`)
	hyphenRuns = regexp.MustCompile(`-+`)
)

// Make lowercases s, strips non-word characters, collapses whitespace and
// underscores into single hyphens and trims hyphens from both ends.
//
//	Make("Getting Started with Next.js 14!") == "getting-started-with-nextjs-14"
func Make(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWord.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
