package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/mdhistory/internal/render"
	"github.com/mithrel/mdhistory/internal/viewer"
	"github.com/mithrel/mdhistory/pkg/api"
)

const sourceURL = "https://github.com/acme/docs/blob/main/readme.md"

type stubFetcher struct {
	commits []api.Commit
	bodies  map[string]string
	err     error
}

func (f *stubFetcher) FetchContent(ctx context.Context, ref api.SourceRef, revision string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.bodies[revision], nil
}

func (f *stubFetcher) ListCommits(ctx context.Context, ref api.SourceRef) ([]api.Commit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.commits, nil
}

// plainRenderer returns the Markdown untouched so views are predictable.
type plainRenderer struct{}

func (plainRenderer) Terminal(md string, width int) (string, error) { return md, nil }

func newTestModel(t *testing.T, f *stubFetcher) model {
	t.Helper()
	sess := viewer.New(f, render.New(render.Options{}), nil)
	m := newModel(context.Background(), sess, plainRenderer{}, make(chan struct{}, 1))
	m.clock = func() time.Time { return time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC) }
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(model)
}

func sampleFetcher() *stubFetcher {
	return &stubFetcher{
		commits: []api.Commit{
			{SHA: "aaa1111aaaa", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Message: "Fix typo"},
			{SHA: "bbb2222bbbb", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Message: "Add mentors\n\nlong body"},
			{SHA: "ccc3333cccc", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Message: "Fix links"},
		},
		bodies: map[string]string{
			"aaa1111aaaa": "# Newest",
			"bbb2222bbbb": "# Middle",
			"ccc3333cccc": "# Oldest",
			"":            "# Head",
		},
	}
}

// run executes cmd synchronously and feeds the result back, followed by a
// change notification.
func run(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	next, _ = next.(model).Update(changedMsg{})
	return next.(model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m model, s string) (model, tea.Cmd) {
	next, cmd := m.Update(key(s))
	return next.(model), cmd
}

func TestSubmitPopulatesTableAndContent(t *testing.T) {
	m := newTestModel(t, sampleFetcher())
	m.input.SetValue(sourceURL)

	m, cmd := press(m, "enter")
	m = run(t, m, cmd)

	require.Len(t, m.table.Rows(), 3)
	assert.Equal(t, "aaa1111", m.table.Rows()[0][0])
	assert.Equal(t, "Jan 3, 2024", m.table.Rows()[0][1])
	assert.Equal(t, "5 days ago", m.table.Rows()[0][2])
	assert.Equal(t, "Add mentors long body", m.table.Rows()[1][3])
	assert.Equal(t, 0, m.table.Cursor())
	assert.Contains(t, m.viewport.View(), "# Newest")
	assert.Equal(t, focusCommits, m.focus)
	assert.Equal(t, "Loaded", m.status)
}

func TestInvalidURLRaisesAlert(t *testing.T) {
	m := newTestModel(t, sampleFetcher())
	m.input.SetValue("not-a-url")

	m, cmd := press(m, "enter")
	m = run(t, m, cmd)

	assert.Equal(t, invalidURLMessage, m.alert)
	assert.Contains(t, m.View(), "Invalid GitHub URL")
	assert.Empty(t, m.table.Rows())

	m, _ = press(m, "x")
	assert.Empty(t, m.alert)
	assert.Equal(t, "not-a-url", m.input.Value())
}

func TestSelectRowLoadsRevision(t *testing.T) {
	m := newTestModel(t, sampleFetcher())
	m.input.SetValue(sourceURL)
	m, cmd := press(m, "enter")
	m = run(t, m, cmd)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	require.Equal(t, 1, m.table.Cursor())

	m, cmd = press(m, "enter")
	m = run(t, m, cmd)

	assert.Equal(t, "bbb2222bbbb", m.snap.Selected)
	assert.Contains(t, m.viewport.View(), "# Middle")
	assert.Equal(t, 1, m.table.Cursor())
	assert.Equal(t, "Selected bbb2222", m.status)

	m, cmd = press(m, "h")
	m = run(t, m, cmd)
	assert.Contains(t, m.viewport.View(), "# Head")
	assert.Equal(t, "Selected branch head", m.status)
}

func TestFilterNarrowsRows(t *testing.T) {
	m := newTestModel(t, sampleFetcher())
	m.input.SetValue(sourceURL)
	m, cmd := press(m, "enter")
	m = run(t, m, cmd)

	m, _ = press(m, "/")
	require.NotNil(t, m.filter)
	for _, r := range "Fix" {
		m, _ = press(m, string(r))
	}
	assert.Equal(t, "Fix", m.query)
	require.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "ccc3333", m.table.Rows()[1][0])

	m, _ = press(m, "enter")
	assert.Nil(t, m.filter)
	assert.Len(t, m.table.Rows(), 2)
	assert.Contains(t, m.renderFooter(), "2/3 commits")

	m, _ = press(m, "/")
	m, _ = press(m, "esc")
	assert.Empty(t, m.query)
	assert.Len(t, m.table.Rows(), 3)
}

func TestFetchFailureKeepsState(t *testing.T) {
	f := sampleFetcher()
	m := newTestModel(t, f)
	m.input.SetValue(sourceURL)
	m, cmd := press(m, "enter")
	m = run(t, m, cmd)

	f.err = errors.New("boom")
	m, cmd = press(m, "r")
	m = run(t, m, cmd)

	assert.Len(t, m.table.Rows(), 3)
	assert.Contains(t, m.viewport.View(), "# Newest")
	assert.Contains(t, m.status, "boom")
}

func TestTypingDoesNotSubmitOrQuit(t *testing.T) {
	m := newTestModel(t, sampleFetcher())
	m.input.SetValue("")
	m, cmd := press(m, "q")
	assert.Equal(t, "q", m.input.Value())
	if cmd != nil {
		_, isQuit := cmd().(tea.QuitMsg)
		assert.False(t, isQuit)
	}
}

func TestSubscribeChangesStopReleasesWaiter(t *testing.T) {
	sess := viewer.New(sampleFetcher(), render.New(render.Options{}), nil)
	changes, stop := subscribeChanges(sess)

	sess.SetURL(sourceURL)
	assert.Equal(t, changedMsg{}, waitForChange(changes)())

	done := make(chan tea.Msg, 1)
	go func() { done <- waitForChange(changes)() }()
	stop()
	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("waitForChange still blocked after stop")
	}

	// Notifications after stop are dropped, not sent on the closed channel.
	assert.NotPanics(t, func() { sess.SetURL(sourceURL + "?x") })
	stop()
}

func TestFilterModalRendersOverView(t *testing.T) {
	m := newTestModel(t, sampleFetcher())
	m.input.SetValue(sourceURL)
	m, cmd := press(m, "enter")
	m = run(t, m, cmd)

	m, _ = press(m, "/")
	assert.Contains(t, m.View(), "Filter commits")
}
