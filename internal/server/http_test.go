package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/mdhistory/internal/render"
	"github.com/mithrel/mdhistory/internal/viewer"
	"github.com/mithrel/mdhistory/pkg/api"
)

const (
	defaultURL = "https://github.com/acme/docs/blob/main/readme.md"
	newestSHA  = "abc1234567890"
	olderSHA   = "def4567890123"
)

type stubFetcher struct {
	mu        sync.Mutex
	revisions []string
}

func (f *stubFetcher) FetchContent(ctx context.Context, ref api.SourceRef, revision string) (string, error) {
	f.mu.Lock()
	f.revisions = append(f.revisions, revision)
	f.mu.Unlock()
	switch revision {
	case newestSHA:
		return "---\ntitle: x\n---\n# Hi {:target=\"_blank\"}", nil
	case olderSHA:
		return "# Older", nil
	default:
		return "# Branch head", nil
	}
}

func (f *stubFetcher) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.revisions...)
}

func (f *stubFetcher) ListCommits(ctx context.Context, ref api.SourceRef) ([]api.Commit, error) {
	return []api.Commit{
		{SHA: newestSHA, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Message: "Fix typo"},
		{SHA: olderSHA, Date: time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC), Message: "Initial"},
	}, nil
}

func newTestServer(t *testing.T, maxSessions int) (*httptest.Server, *stubFetcher) {
	t.Helper()
	cfg := viper.New()
	cfg.Set("default_url", defaultURL)
	cfg.Set("http.max_sessions", maxSessions)
	f := &stubFetcher{}
	newSession := func() *viewer.Session {
		s := viewer.New(f, render.New(render.Options{Sanitize: true}), nil)
		s.SetURL(defaultURL)
		return s
	}
	srv, err := New(context.Background(), cfg, newSession, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, f
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func getState(t *testing.T, c *http.Client, base string) api.Snapshot {
	t.Helper()
	resp, err := c.Get(base + "/api/state")
	require.NoError(t, err)
	var snap api.Snapshot
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &snap))
	return snap
}

func TestIndexPrefillsDefaultURL(t *testing.T) {
	ts, _ := newTestServer(t, 8)
	resp, err := newBrowser(t).Get(ts.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="`+defaultURL+`"`)
	assert.Contains(t, body, ">Load</button>")
	assert.NotContains(t, body, `id="commit-selector"`)
	assert.NotContains(t, body, "Loading...")
}

func TestLoadInvalidURLShowsAlert(t *testing.T) {
	ts, f := newTestServer(t, 8)
	c := newBrowser(t)

	resp, err := c.PostForm(ts.URL+"/load", url.Values{"url": {"not-a-url"}})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Contains(t, body, `data-alert="Invalid GitHub URL format. Please enter a valid URL."`)
	assert.Contains(t, body, `value="not-a-url"`)

	snap := getState(t, c, ts.URL)
	assert.False(t, snap.HasRef)
	assert.Equal(t, defaultURL, snap.URL)
	assert.Empty(t, f.fetched())
}

func TestLoadRendersNewestRevision(t *testing.T) {
	ts, f := newTestServer(t, 8)
	c := newBrowser(t)

	resp, err := c.PostForm(ts.URL+"/load", url.Values{"url": {defaultURL}})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Contains(t, body, "<h1>Hi</h1>")
	assert.Contains(t, body, `<option value="`+newestSHA+`" selected>Jan 1, 2024 - Fix typo (abc1234)</option>`)
	assert.Contains(t, body, "Dec 24, 2023 - Initial (def4567)")
	assert.Equal(t, []string{newestSHA}, f.fetched())

	snap := getState(t, c, ts.URL)
	assert.Equal(t, newestSHA, snap.Selected)
	assert.False(t, snap.Loading)
}

func TestSelectRestoresScroll(t *testing.T) {
	ts, _ := newTestServer(t, 8)
	c := newBrowser(t)

	_, err := c.PostForm(ts.URL+"/load", url.Values{"url": {defaultURL}})
	require.NoError(t, err)

	resp, err := c.PostForm(ts.URL+"/select", url.Values{"sha": {olderSHA}, "scroll": {"250"}})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Contains(t, body, "<h1>Older</h1>")
	assert.Contains(t, body, `data-scroll="250"`)
	assert.Contains(t, body, `<option value="`+olderSHA+`" selected>`)
}

func TestSelectPlaceholderLoadsBranchHead(t *testing.T) {
	ts, f := newTestServer(t, 8)
	c := newBrowser(t)

	_, err := c.PostForm(ts.URL+"/load", url.Values{"url": {defaultURL}})
	require.NoError(t, err)
	resp, err := c.PostForm(ts.URL+"/select", url.Values{"sha": {""}})
	require.NoError(t, err)

	assert.Contains(t, readBody(t, resp), "<h1>Branch head</h1>")
	assert.Equal(t, []string{newestSHA, ""}, f.fetched())
}

func TestIndexETag(t *testing.T) {
	ts, _ := newTestServer(t, 8)
	c := newBrowser(t)

	resp, err := c.Get(ts.URL + "/")
	require.NoError(t, err)
	_ = readBody(t, resp)
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	resp, err = c.Do(req)
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestSessionsAreIsolated(t *testing.T) {
	ts, _ := newTestServer(t, 8)
	alice, bob := newBrowser(t), newBrowser(t)

	_, err := alice.PostForm(ts.URL+"/load", url.Values{"url": {defaultURL}})
	require.NoError(t, err)

	assert.Len(t, getState(t, alice, ts.URL).Commits, 2)
	assert.Empty(t, getState(t, bob, ts.URL).Commits)
}

func TestSessionEviction(t *testing.T) {
	ts, _ := newTestServer(t, 1)
	alice, bob := newBrowser(t), newBrowser(t)

	_, err := alice.PostForm(ts.URL+"/load", url.Values{"url": {defaultURL}})
	require.NoError(t, err)
	_ = getState(t, bob, ts.URL)

	// Alice's session was evicted; she starts over.
	assert.False(t, getState(t, alice, ts.URL).HasRef)
}

func TestMethodsAndRoutes(t *testing.T) {
	ts, _ := newTestServer(t, 8)
	c := newBrowser(t)

	resp, err := c.Get(ts.URL + "/load")
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = c.Get(ts.URL + "/nope")
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = c.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(readBody(t, resp)))
}
