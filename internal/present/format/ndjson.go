package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/mdhistory/pkg/api"
)

// WriteNDJSONCommits writes one JSON object per line.
func WriteNDJSONCommits(w io.Writer, commits []api.Commit) error {
	enc := json.NewEncoder(w)
	for _, c := range commits {
		if err := enc.Encode(c); err != nil {
			return err
		}
	}
	return nil
}
