package github

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/mdhistory/pkg/api"
)

var testRef = api.SourceRef{Owner: "acme", Repository: "docs", Branch: "main", Path: "guides/readme.md"}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{APIURL: srv.URL, RawURL: srv.URL + "/raw"})
	require.NoError(t, err)
	return c
}

func TestFetchContent(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte("# Hello\n"))
	}))

	body, err := c.FetchContent(context.Background(), testRef, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n", body)
	assert.Equal(t, "/raw/acme/docs/abc1234/guides/readme.md", gotPath)

	_, err = c.FetchContent(context.Background(), testRef, "")
	require.NoError(t, err)
	assert.Equal(t, "/raw/acme/docs/main/guides/readme.md", gotPath)
}

func TestFetchContentStatusError(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", code)
		}))
		_, err := c.FetchContent(context.Background(), testRef, "")
		require.Error(t, err)
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, code, se.Code)
	}
}

func TestFetchContentRejectsOversizeBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("a"), maxContentBytes+1024))
	}))
	body, err := c.FetchContent(context.Background(), testRef, "")
	require.ErrorIs(t, err, ErrContentTooLarge)
	assert.Empty(t, body)
}

func TestFetchContentAtLimit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("a"), maxContentBytes))
	}))
	body, err := c.FetchContent(context.Background(), testRef, "")
	require.NoError(t, err)
	assert.Len(t, body, maxContentBytes)
}

func TestListCommits(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("path")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"sha":"abc1234567890","commit":{"author":{"name":"Ada","date":"2024-01-01T00:00:00Z"},"message":"Fix typo"}},
			{"sha":"def4567890123","commit":{"author":{"name":"Bob","date":"2023-12-24T10:30:00Z"},"message":"Initial"}}
		]`))
	}))

	commits, err := c.ListCommits(context.Background(), testRef)
	require.NoError(t, err)
	assert.Equal(t, "/repos/acme/docs/commits", gotPath)
	assert.Equal(t, "guides/readme.md", gotQuery)

	require.Len(t, commits, 2)
	assert.Equal(t, api.Commit{
		SHA:     "abc1234567890",
		Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Message: "Fix typo",
		Author:  "Ada",
	}, commits[0])
	assert.Equal(t, "def4567890123", commits[1].SHA)
}

func TestListCommitsHTTPError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	commits, err := c.ListCommits(context.Background(), testRef)
	require.Error(t, err)
	assert.Nil(t, commits)
}

func TestListCommitsEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	commits, err := c.ListCommits(context.Background(), testRef)
	require.NoError(t, err)
	assert.Empty(t, commits)
}
