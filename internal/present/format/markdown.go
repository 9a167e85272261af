package format

import (
	"io"

	"github.com/mithrel/mdhistory/internal/render"
)

// WritePretty renders cleaned Markdown for a terminal using glamour.
func WritePretty(w io.Writer, r *render.Renderer, md string, width int) error {
	out, err := r.Terminal(md, width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// WriteHTML writes the rendered HTML fragment.
func WriteHTML(w io.Writer, r *render.Renderer, md string) error {
	out, err := r.HTML(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
