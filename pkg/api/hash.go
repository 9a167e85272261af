package api

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 hash of everything a view renders
// from the snapshot. Field boundaries are NUL-delimited.
func (s Snapshot) Hash() string {
	h := blake3.New()

	write := func(v string) {
		_, _ = h.Write([]byte(v))
		_, _ = h.Write([]byte{0})
	}

	write(s.URL)
	write(s.Ref.Owner)
	write(s.Ref.Repository)
	write(s.Ref.Branch)
	write(s.Ref.Path)
	write(strconv.FormatBool(s.HasRef))

	for _, c := range s.Commits {
		write(c.SHA)
		write(c.Date.UTC().Format(timeRFC3339Nano))
		write(c.Message)
	}
	_, _ = h.Write([]byte{0}) // end of commits

	write(s.Selected)
	write(s.HTML)
	write(strconv.FormatBool(s.Loading))
	write(strconv.Itoa(s.ScrollOffset))

	return hex.EncodeToString(h.Sum(nil))
}

const timeRFC3339Nano = "2006-01-02T15:04:05.999999999Z07:00"
