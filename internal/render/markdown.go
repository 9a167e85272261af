package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	// Leading YAML front matter: ---\n ... ---\n at the very start.
	frontMatterRe = regexp.MustCompile(`\A---[\s\S]*?---\n`)
	// Kramdown/Liquid inline attribute lists such as {:target="_blank"}.
	attrTagRe = regexp.MustCompile(`\{:[^}]*\}`)
)

// StripFrontMatter removes a leading front-matter block.
func StripFrontMatter(s string) string {
	return frontMatterRe.ReplaceAllString(s, "")
}

// StripAttributeTags removes every {:...} tag.
func StripAttributeTags(s string) string {
	return attrTagRe.ReplaceAllString(s, "")
}

// Clean prepares fetched Markdown for rendering.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return StripAttributeTags(StripFrontMatter(s))
}

// Options controls HTML and terminal output.
type Options struct {
	Sanitize bool
	Style    string
	WordWrap int
}

// Renderer converts cleaned Markdown to HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	opts   Options
}

func New(opts Options) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		opts: opts,
	}
	if opts.Sanitize {
		r.policy = bluemonday.UGCPolicy()
	}
	return r
}

// HTML converts Markdown to an HTML fragment.
func (r *Renderer) HTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	if r.policy != nil {
		return r.policy.Sanitize(buf.String()), nil
	}
	return buf.String(), nil
}

// Terminal renders Markdown for an ANSI terminal. A width <= 0 uses the
// renderer's configured word wrap.
func (r *Renderer) Terminal(md string, width int) (string, error) {
	if width <= 0 {
		width = r.opts.WordWrap
	}
	style := r.opts.Style
	if style == "" {
		style = "dracula"
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
