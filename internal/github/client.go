// Package github talks to the two GitHub endpoints the viewer needs: the
// raw-content host for file bodies and the REST API for a file's commit
// history. Requests are anonymous and subject to GitHub's rate limits.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v29/github"

	"github.com/mithrel/mdhistory/pkg/api"
)

const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"

	maxContentBytes = 8 << 20
	userAgent       = "mdhistory"
)

// ErrContentTooLarge is returned for file bodies over the 8 MiB read cap.
var ErrContentTooLarge = errors.New("content too large")

// StatusError reports a non-2xx response from the raw-content host.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

type Options struct {
	APIURL string
	RawURL string
	// Timeout bounds each request; zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client fetches file contents and commit history from GitHub.
type Client struct {
	api    *gh.Client
	http   *http.Client
	rawURL string
	log    *slog.Logger
}

// New builds a Client from opts; empty base URLs fall back to GitHub's.
func New(opts Options) (*Client, error) {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	apiClient := gh.NewClient(hc)
	apiClient.UserAgent = userAgent
	if opts.APIURL != "" {
		base, err := url.Parse(strings.TrimRight(opts.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github api url: %w", err)
		}
		apiClient.BaseURL = base
	}

	raw := opts.RawURL
	if raw == "" {
		raw = DefaultRawURL
	}
	if _, err := url.Parse(raw); err != nil {
		return nil, fmt.Errorf("github raw url: %w", err)
	}

	return &Client{api: apiClient, http: hc, rawURL: raw, log: logger}, nil
}

// FetchContent downloads the file body for ref at revision; an empty revision
// reads the branch head.
func (c *Client) FetchContent(ctx context.Context, ref api.SourceRef, revision string) (string, error) {
	u := RawURL(c.rawURL, ref, revision)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %s: %w", ref.Path, err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", ref.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode, URL: u}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", ref.Path, err)
	}
	if len(body) > maxContentBytes {
		return "", fmt.Errorf("read %s: %w (limit %d bytes)", ref.Path, ErrContentTooLarge, maxContentBytes)
	}
	c.log.Debug("fetched content", "url", u, "bytes", len(body), "dur", time.Since(start))
	return string(body), nil
}

// ListCommits returns the first page of commits touching ref.Path,
// newest first as the API orders them.
func (c *Client) ListCommits(ctx context.Context, ref api.SourceRef) ([]api.Commit, error) {
	start := time.Now()
	rcs, _, err := c.api.Repositories.ListCommits(ctx, ref.Owner, ref.Repository, &gh.CommitsListOptions{
		Path: ref.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("list commits %s/%s %s: %w", ref.Owner, ref.Repository, ref.Path, err)
	}
	out := make([]api.Commit, 0, len(rcs))
	for _, rc := range rcs {
		commit := rc.GetCommit()
		out = append(out, api.Commit{
			SHA:     rc.GetSHA(),
			Date:    commit.GetAuthor().GetDate(),
			Message: commit.GetMessage(),
			Author:  commit.GetAuthor().GetName(),
		})
	}
	c.log.Debug("listed commits", "owner", ref.Owner, "repo", ref.Repository, "path", ref.Path, "count", len(out), "dur", time.Since(start))
	return out, nil
}
