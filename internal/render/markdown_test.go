package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFrontMatter(t *testing.T) {
	in := "---\nlayout: post\ntitle: Mentors\n---\nBody text\n"
	out := StripFrontMatter(in)
	assert.Equal(t, "Body text\n", out)
	assert.NotContains(t, out, "---")
	assert.NotContains(t, out, "layout: post")
	assert.NotContains(t, out, "title: Mentors")
}

func TestStripFrontMatterOnlyLeading(t *testing.T) {
	in := "Intro\n\n---\nnot: front matter\n---\n"
	assert.Equal(t, in, StripFrontMatter(in))
}

func TestStripAttributeTags(t *testing.T) {
	in := `[link](https://example.com){:target="_blank"} and {: .class} text`
	assert.Equal(t, `[link](https://example.com) and  text`, StripAttributeTags(in))
}

func TestCleanNormalisesLineEndings(t *testing.T) {
	in := "---\r\ntitle: x\r\n---\r\n# Hi\r\n"
	assert.Equal(t, "# Hi\n", Clean(in))
}

func TestCleanAndRenderHeading(t *testing.T) {
	r := New(Options{Sanitize: true})
	out, err := r.HTML(Clean("---\ntitle: x\n---\n# Hi {:target=\"_blank\"}"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>", strings.TrimSpace(out))
}

func TestHTMLSanitize(t *testing.T) {
	md := "hello <script>alert(1)</script>\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"

	safe, err := New(Options{Sanitize: true}).HTML(md)
	require.NoError(t, err)
	assert.NotContains(t, safe, "<script>")
	assert.Contains(t, safe, "<table>")

	raw, err := New(Options{Sanitize: false}).HTML(md)
	require.NoError(t, err)
	assert.Contains(t, raw, "<script>")
}

func TestTerminal(t *testing.T) {
	r := New(Options{Style: "notty", WordWrap: 40})
	out, err := r.Terminal("# Title\n\nSome *body* text.", 0)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body")
}
