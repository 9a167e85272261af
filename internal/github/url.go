package github

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/mithrel/mdhistory/pkg/api"
)

// blobRegex matches .../github.com/owner/repo/blob/branch/path anywhere in
// the input; the path may contain further slashes.
var blobRegex = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/blob/([^/]+)/(.*)`)

// ParseBlobURL extracts the source reference from a GitHub blob URL.
// It reports false when s does not have the blob URL shape.
func ParseBlobURL(s string) (api.SourceRef, bool) {
	match := blobRegex.FindStringSubmatch(strings.TrimSpace(s))
	if len(match) != 5 {
		return api.SourceRef{}, false
	}
	p := match[4]
	// Query strings and fragments (?plain=1, #L10) are not part of the path.
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	return api.SourceRef{
		Owner:      match[1],
		Repository: match[2],
		Branch:     match[3],
		Path:       p,
	}, true
}

// RawURL builds the raw-content URL for ref at revision. An empty revision
// falls back to the reference's branch.
func RawURL(base string, ref api.SourceRef, revision string) string {
	if revision == "" {
		revision = ref.Branch
	}
	segs := strings.Split(ref.Path, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" +
		url.PathEscape(ref.Owner) + "/" +
		url.PathEscape(ref.Repository) + "/" +
		url.PathEscape(revision) + "/" +
		strings.Join(segs, "/")
}
