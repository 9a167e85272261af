package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeExpr(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"2h":               now.Add(-2 * time.Hour),
		"30m":              now.Add(-30 * time.Minute),
		"3d":               time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC),
		"2w":               time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		"1mo":              time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC),
		"2024-01-02":       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		"2024-01-02T10:30": time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTimeExpr(in, now)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %s want %s", in, got, want)
	}

	for _, bad := range []string{"", "xd", "yesterday", "-1w"} {
		_, err := ParseTimeExpr(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestParseTimeRangeSwapsAndContains(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	r, err := ParseTimeRange("2024-03-10", "2024-03-01", now)
	require.NoError(t, err)
	assert.True(t, r.Since.Before(r.Until))

	assert.True(t, r.Contains(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(r.Since))
	assert.False(t, r.Contains(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))

	open, err := ParseTimeRange("", "", now)
	require.NoError(t, err)
	assert.True(t, open.Contains(time.Time{}))

	_, err = ParseTimeRange("nope", "", now)
	assert.ErrorContains(t, err, "invalid --since")
}

func TestFuzzyIndices(t *testing.T) {
	labels := []string{
		"Jan 3, 2024 - Fix typo (aaa1111)",
		"Jan 2, 2024 - Add mentors (bbb2222)",
		"Jan 1, 2024 - Fix links (ccc3333)",
	}
	assert.Equal(t, []int{0, 1, 2}, FuzzyIndices("", labels))
	assert.Equal(t, []int{0, 2}, FuzzyIndices("Fix", labels))
	assert.Equal(t, []int{1}, FuzzyIndices("bbb2", labels))
	assert.Empty(t, FuzzyIndices("zzzz", labels))
}
