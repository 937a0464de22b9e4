// Package readtime estimates reading time for blog content.
package readtime

import (
	"html"
	"regexp"
	"strings"
)

// WordsPerMinute is the assumed reading speed.
const WordsPerMinute = 200

var tags = regexp.MustCompile(`<[^>]*>`)

// PlainText strips HTML tags and unescapes entities.
func PlainText(content string) string {
	return strings.TrimSpace(html.UnescapeString(tags.ReplaceAllString(content, " ")))
}

// Words counts whitespace-separated words in content once markup is removed.
func Words(content string) int {
	return len(strings.Fields(PlainText(content)))
}

// Minutes returns ceil(words/200), or 0 for empty content.
func Minutes(content string) int {
	words := Words(content)
	if words == 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// Excerpt returns the first n characters of the plain text, collapsing whitespace.
func Excerpt(content string, n int) string {
	text := strings.Join(strings.Fields(PlainText(content)), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n]))
}
