package present

import (
	"io"

	"github.com/mithrel/mdhistory/internal/present/format"
	"github.com/mithrel/mdhistory/internal/render"
	"github.com/mithrel/mdhistory/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeHTML
	ModeMarkdown
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	Width      int
}

// ParseMode parses "plain", "pretty", "json", "ndjson", "html" or "markdown".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	case "html":
		return ModeHTML, true
	case "markdown", "md":
		return ModeMarkdown, true
	default:
		return ModePlain, false
	}
}

// RenderCommits renders a commit list according to options. Document-only
// modes fall back to the plain table.
func RenderCommits(w io.Writer, commits []api.Commit, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONCommits(w, commits, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONCommits(w, commits)
	default:
		return format.WritePlainCommits(w, commits, opts.Headers)
	}
}

// RenderDocument renders cleaned Markdown according to options.
func RenderDocument(w io.Writer, r *render.Renderer, md string, opts Options) error {
	switch opts.Mode {
	case ModeHTML:
		return format.WriteHTML(w, r, md)
	case ModeMarkdown, ModePlain:
		_, err := io.WriteString(w, md)
		return err
	default:
		return format.WritePretty(w, r, md, opts.Width)
	}
}
