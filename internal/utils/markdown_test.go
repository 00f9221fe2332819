package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownSanitises(t *testing.T) {
	out := string(RenderMarkdown("# Hello\n\n<script>alert(1)</script>\n\n**bold**"))

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "Hello</h1>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderMarkdownImages(t *testing.T) {
	out := string(RenderMarkdown("![cat](https://example.com/cat.png)"))

	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
	assert.NotContains(t, out, "<body>")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "", Excerpt("", 10))
	assert.Equal(t, "Hello world", Excerpt("# Hello\n\nworld", 50))

	long := Excerpt(strings.Repeat("word ", 40), 12)
	assert.True(t, strings.HasSuffix(long, "…"))
	assert.LessOrEqual(t, len([]rune(long)), 13)
}
