package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/mdhistory/internal/viewer"
	"github.com/mithrel/mdhistory/pkg/api"
)

const invalidURLMessage = "Invalid GitHub URL format. Please enter a valid URL."

// changedMsg signals that the session state moved; the model re-reads the
// snapshot instead of trusting a payload that may already be stale.
type changedMsg struct{}

// alertMsg raises a modal alert that any key dismisses.
type alertMsg struct {
	text string
}

// actionResultMsg conveys the outcome of a load, select or refresh.
type actionResultMsg struct {
	action string
	err    error
	dur    time.Duration
}

// subscribeChanges turns session notifications into a coalescing signal
// channel. stop unsubscribes and closes the channel; notifications racing
// with stop are dropped.
func subscribeChanges(sess *viewer.Session) (<-chan struct{}, func()) {
	changes := make(chan struct{}, 1)
	var mu sync.Mutex
	closed := false
	cancel := sess.Subscribe(func(api.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	stop := func() {
		cancel()
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(changes)
		}
	}
	return changes, stop
}

// waitForChange blocks until the session reports a change.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func submitCmd(ctx context.Context, sess *viewer.Session, raw string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := sess.Submit(ctx, raw)
		if errors.Is(err, viewer.ErrInvalidURL) {
			return alertMsg{text: invalidURLMessage}
		}
		return actionResultMsg{action: "Loaded", err: err, dur: time.Since(start)}
	}
}

func selectCmd(ctx context.Context, sess *viewer.Session, sha string, offset int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := sess.Select(ctx, sha, offset)
		return actionResultMsg{action: "Selected " + shortSHA(sha), err: err, dur: time.Since(start)}
	}
}

func refreshCmd(ctx context.Context, sess *viewer.Session) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := sess.Refresh(ctx)
		return actionResultMsg{action: "Refreshed", err: err, dur: time.Since(start)}
	}
}

func shortSHA(sha string) string {
	if sha == "" {
		return "branch head"
	}
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
