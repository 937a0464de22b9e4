package readtime

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestMinutes(t *testing.T) {
	assert.Equal(t, 0, Minutes(""))
	assert.Equal(t, 1, Minutes("one"))
	assert.Equal(t, 1, Minutes(words(200)))
	assert.Equal(t, 2, Minutes(words(400)))
	assert.Equal(t, 3, Minutes(words(401)))
}

func TestMinutesIgnoresMarkup(t *testing.T) {
	content := "<p>" + strings.Repeat("<strong>word</strong> ", 400) + "</p>"
	assert.Equal(t, 400, Words(content))
	assert.Equal(t, 2, Minutes(content))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Hello world", Excerpt("<h1>Hello</h1>\n<p>world</p>", 160))
	assert.Equal(t, "abc", Excerpt("abcdef", 3))
	assert.Equal(t, "Tom & Jerry", Excerpt("Tom &amp; Jerry", 160))
}
