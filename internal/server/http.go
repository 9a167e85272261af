// Package server serves the viewer as a server-rendered web page. Each
// browser gets its own viewer session, identified by a cookie and held in a
// bounded in-memory LRU; nothing is persisted.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/spf13/viper"

	"github.com/mithrel/mdhistory/internal/config"
	"github.com/mithrel/mdhistory/internal/present/format"
	"github.com/mithrel/mdhistory/internal/viewer"
	"github.com/mithrel/mdhistory/pkg/api"
)

const (
	cookieName = "mdhistory_session"
	// syncWait is how long a form post waits for its fetches before
	// redirecting; slower fetches finish behind the Loading page.
	syncWait = 1500 * time.Millisecond

	invalidURLMessage = "Invalid GitHub URL format. Please enter a valid URL."
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Server serves the web viewer backed by per-browser sessions.
type Server struct {
	cfg        *viper.Viper
	newSession func() *viewer.Session
	sessions   *lru.Cache
	log        *slog.Logger
	// ctx bounds background fetches started by form posts.
	ctx context.Context
}

// New builds a Server keeping up to http.max_sessions sessions from
// newSession; ctx bounds their background fetches.
func New(ctx context.Context, cfg *viper.Viper, newSession func() *viewer.Session, logger *slog.Logger) (*Server, error) {
	size := cfg.GetInt("http.max_sessions")
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, newSession: newSession, sessions: cache, log: logger, ctx: ctx}, nil
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/load", s.handleLoad)
	mux.HandleFunc("/select", s.handleSelect)
	mux.HandleFunc("/api/state", s.handleState)
	return mux
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) *viewer.Session {
	if c, err := r.Cookie(cookieName); err == nil {
		if v, ok := s.sessions.Get(c.Value); ok {
			return v.(*viewer.Session)
		}
	}
	id := uuid.NewString()
	sess := s.newSession()
	s.sessions.Add(id, sess)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Debug("session created", "id", id)
	return sess
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Snap        api.Snapshot
	InputURL    string
	Placeholder string
	Options     []option
	Body        template.HTML
	Alert       string
	Scroll      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := s.session(w, r)
	snap := sess.Snapshot()

	data := pageData{
		Snap:        snap,
		InputURL:    snap.URL,
		Placeholder: s.cfg.GetString("default_url"),
		// The rendered body is produced by the Markdown renderer, sanitized
		// unless render.sanitize is off.
		Body: template.HTML(snap.HTML),
	}
	if data.Placeholder == "" {
		data.Placeholder = config.DefaultURL
	}
	q := r.URL.Query()
	if _, ok := q["invalid"]; ok {
		data.Alert = invalidURLMessage
		data.InputURL = q.Get("invalid")
	}
	if !snap.Loading && snap.ScrollOffset > 0 {
		data.Scroll = strconv.Itoa(snap.ScrollOffset)
	}
	for _, c := range snap.Commits {
		data.Options = append(data.Options, option{
			Value:    c.SHA,
			Label:    format.CommitLabel(c),
			Selected: c.SHA == snap.Selected,
		})
	}

	etag := `"` + snap.Hash() + `"`
	if data.Alert != "" {
		etag = `W/"alert-` + snap.Hash() + `"`
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if data.Alert == "" && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		s.log.Error("render page", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	sess := s.session(w, r)
	raw := strings.TrimSpace(r.PostForm.Get("url"))
	if _, err := sess.Accept(raw); err != nil {
		s.log.Warn("rejected url", "url", raw)
		http.Redirect(w, r, "/?invalid="+url.QueryEscape(raw), http.StatusSeeOther)
		return
	}
	s.background(func(ctx context.Context) { _ = sess.Refresh(ctx) })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	sess := s.session(w, r)
	sha := strings.TrimSpace(r.PostForm.Get("sha"))
	scroll, _ := strconv.Atoi(r.PostForm.Get("scroll"))
	if scroll < 0 {
		scroll = 0
	}
	s.background(func(ctx context.Context) { _ = sess.Select(ctx, sha, scroll) })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// background runs fn detached from the request and waits up to syncWait for
// it, so fast fetches land before the redirect is followed.
func (s *Server) background(fn func(ctx context.Context)) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(s.ctx)
	}()
	select {
	case <-done:
	case <-time.After(syncWait):
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := s.session(w, r).Snapshot()
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(snap)
}
