package util

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// FuzzyIndices returns the indices of candidates matching input, in their
// original order. An empty input matches everything.
func FuzzyIndices(input string, candidates []string) []int {
	if input == "" {
		out := make([]int, len(candidates))
		for i := range candidates {
			out[i] = i
		}
		return out
	}
	matches := fuzzy.Find(input, candidates)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Index)
	}
	sort.Ints(out)
	return out
}
