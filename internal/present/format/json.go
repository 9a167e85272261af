package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/mdhistory/pkg/api"
)

func WriteJSONCommits(w io.Writer, commits []api.Commit, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if commits == nil {
		commits = []api.Commit{}
	}
	return enc.Encode(commits)
}
