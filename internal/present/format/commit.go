package format

import (
	"strings"

	"github.com/mithrel/mdhistory/pkg/api"
)

// DateLayout matches en-US short dates such as "Jan 1, 2024".
const DateLayout = "Jan 2, 2006"

// CommitLabel renders the selector text for a commit:
// "{date} - {message} ({short sha})". Dates are shown in UTC and message
// whitespace is collapsed onto one line.
func CommitLabel(c api.Commit) string {
	return c.Date.UTC().Format(DateLayout) + " - " + OneLine(c.Message) + " (" + c.ShortSHA() + ")"
}

// OneLine collapses all whitespace runs, newlines included, to single spaces.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
