// Package viewer holds the state of one viewing session: the accepted source
// reference, its commit history, the selected revision and the rendered
// content. Views observe it through Snapshot and Subscribe.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mithrel/mdhistory/internal/github"
	"github.com/mithrel/mdhistory/internal/render"
	"github.com/mithrel/mdhistory/pkg/api"
)

// ErrInvalidURL is returned by Accept and Submit for input that is not a
// GitHub blob URL.
var ErrInvalidURL = errors.New("invalid GitHub URL format")

// Fetcher retrieves file bodies and commit history.
type Fetcher interface {
	FetchContent(ctx context.Context, ref api.SourceRef, revision string) (string, error)
	ListCommits(ctx context.Context, ref api.SourceRef) ([]api.Commit, error)
}

// Renderer converts cleaned Markdown to HTML.
type Renderer interface {
	HTML(md string) (string, error)
}

// Session is safe for concurrent use. The lock is never held across a fetch.
type Session struct {
	fetcher  Fetcher
	renderer Renderer
	log      *slog.Logger

	mu       sync.Mutex
	url      string
	ref      api.SourceRef
	hasRef   bool
	commits  []api.Commit
	selected string
	markdown string
	html     string
	inflight int
	scroll   int

	// gen advances on every accepted URL; contentSeq on every content
	// request. Responses carrying an older value are dropped.
	gen        uint64
	contentSeq uint64

	nextSub int
	subs    map[int]func(api.Snapshot)
}

func New(f Fetcher, r Renderer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		fetcher:  f,
		renderer: r,
		log:      logger,
		subs:     make(map[int]func(api.Snapshot)),
	}
}

// SetURL pre-fills the URL shown in the input without accepting it.
func (s *Session) SetURL(raw string) {
	s.mu.Lock()
	if s.hasRef {
		s.mu.Unlock()
		return
	}
	s.url = raw
	s.mu.Unlock()
	s.notify()
}

// Accept validates raw and makes it the active source. Commits, selection,
// content and scroll offset are reset. On ErrInvalidURL nothing changes.
func (s *Session) Accept(raw string) (api.SourceRef, error) {
	ref, ok := github.ParseBlobURL(raw)
	if !ok {
		return api.SourceRef{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	s.mu.Lock()
	s.gen++
	s.url = raw
	s.ref = ref
	s.hasRef = true
	s.commits = nil
	s.selected = ""
	s.markdown = ""
	s.html = ""
	s.scroll = 0
	s.mu.Unlock()

	s.log.Info("source accepted", "owner", ref.Owner, "repo", ref.Repository, "branch", ref.Branch, "path", ref.Path)
	s.notify()
	return ref, nil
}

// Submit accepts raw and loads its history and newest revision.
func (s *Session) Submit(ctx context.Context, raw string) error {
	if _, err := s.Accept(raw); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Refresh reloads the commit history of the active source.
func (s *Session) Refresh(ctx context.Context) error {
	return s.LoadHistory(ctx)
}

// LoadHistory replaces the commit list and, when it is non-empty, selects the
// newest commit and loads its content. On failure the previous list stays.
func (s *Session) LoadHistory(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasRef {
		s.mu.Unlock()
		return nil
	}
	ref, gen := s.ref, s.gen
	s.inflight++
	s.mu.Unlock()
	s.notify()

	commits, err := s.fetcher.ListCommits(ctx, ref)

	s.mu.Lock()
	s.inflight--
	stale := gen != s.gen
	if err == nil && !stale {
		s.commits = commits
	}
	s.mu.Unlock()
	s.notify()

	switch {
	case err != nil:
		s.log.Error("error fetching commits", "path", ref.Path, "err", err)
		return err
	case stale:
		s.log.Debug("discarding stale commit list", "path", ref.Path)
		return nil
	case len(commits) == 0:
		return nil
	}

	newest := commits[0].SHA
	s.mu.Lock()
	if gen == s.gen {
		s.selected = newest
	}
	s.mu.Unlock()
	return s.loadContent(ctx, gen, newest)
}

// Select records the caller's scroll offset, selects sha and loads it.
func (s *Session) Select(ctx context.Context, sha string, scrollOffset int) error {
	s.mu.Lock()
	if !s.hasRef {
		s.mu.Unlock()
		return nil
	}
	s.scroll = scrollOffset
	s.selected = sha
	gen := s.gen
	s.mu.Unlock()
	return s.loadContent(ctx, gen, sha)
}

// LoadContent fetches and renders revision; an empty revision reads the
// branch head.
func (s *Session) LoadContent(ctx context.Context, revision string) error {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	return s.loadContent(ctx, gen, revision)
}

func (s *Session) loadContent(ctx context.Context, gen uint64, revision string) error {
	s.mu.Lock()
	if !s.hasRef || gen != s.gen {
		s.mu.Unlock()
		return nil
	}
	s.contentSeq++
	seq := s.contentSeq
	ref := s.ref
	s.inflight++
	s.mu.Unlock()
	s.notify()

	md, html, err := s.fetchAndRender(ctx, ref, revision)

	s.mu.Lock()
	s.inflight--
	stale := gen != s.gen || seq != s.contentSeq
	if err == nil && !stale {
		s.markdown = md
		s.html = html
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.log.Error("error fetching markdown", "path", ref.Path, "revision", revision, "err", err)
		return err
	}
	if stale {
		s.log.Debug("discarding stale content", "path", ref.Path, "revision", revision)
	}
	return nil
}

func (s *Session) fetchAndRender(ctx context.Context, ref api.SourceRef, revision string) (string, string, error) {
	raw, err := s.fetcher.FetchContent(ctx, ref, revision)
	if err != nil {
		return "", "", err
	}
	md := render.Clean(raw)
	html, err := s.renderer.HTML(md)
	if err != nil {
		return "", "", err
	}
	return md, html, nil
}

// Snapshot returns a copy of the current display state.
func (s *Session) Snapshot() api.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() api.Snapshot {
	return api.Snapshot{
		URL:          s.url,
		Ref:          s.ref,
		HasRef:       s.hasRef,
		Commits:      append([]api.Commit(nil), s.commits...),
		Selected:     s.selected,
		Markdown:     s.markdown,
		HTML:         s.html,
		Loading:      s.inflight > 0,
		ScrollOffset: s.scroll,
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the mutating goroutine and must not block.
func (s *Session) Subscribe(fn func(api.Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	fns := make([]func(api.Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
