package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mithrel/mdhistory/pkg/api"
)

// TSV columns: sha, date, author, label
var headerLine = "sha\tdate\tauthor\tlabel\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func WritePlainCommits(w io.Writer, commits []api.Commit, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, c := range commits {
		line := fmt.Sprintf("%s\t%s\t%s\t%s\n",
			esc(c.SHA), c.Date.UTC().Format(time.RFC3339), esc(c.Author), esc(CommitLabel(c)))
		_, _ = io.WriteString(tw, line)
	}
	return tw.Flush()
}
