package api

import "time"

// SourceRef identifies a single file on a GitHub branch.
type SourceRef struct {
	Owner      string `json:"owner"`
	Repository string `json:"repository"`
	Branch     string `json:"branch"`
	Path       string `json:"path"`
}

// BlobURL rebuilds the canonical github.com blob URL for the reference.
func (r SourceRef) BlobURL() string {
	return "https://github.com/" + r.Owner + "/" + r.Repository + "/blob/" + r.Branch + "/" + r.Path
}

type Commit struct {
	SHA     string    `json:"sha"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
	Author  string    `json:"author,omitempty"`
}

// ShortSHA returns the 7-character abbreviated hash.
func (c Commit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// Snapshot is an immutable copy of a viewer session's display state.
type Snapshot struct {
	URL          string    `json:"url"`
	Ref          SourceRef `json:"ref"`
	HasRef       bool      `json:"has_ref"`
	Commits      []Commit  `json:"commits"`
	Selected     string    `json:"selected"`
	Markdown     string    `json:"markdown"`
	HTML         string    `json:"html"`
	Loading      bool      `json:"loading"`
	ScrollOffset int       `json:"scroll_offset"`
}
