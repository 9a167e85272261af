// Package tui is the terminal view of a viewer session: a URL input, the
// commit table and the rendered revision in a scrollable viewport.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/mdhistory/internal/viewer"
	"github.com/mithrel/mdhistory/pkg/api"
)

// Renderer renders cleaned Markdown for the terminal.
type Renderer interface {
	Terminal(md string, width int) (string, error)
}

type focus int

const (
	focusURL focus = iota
	focusCommits
	focusContent
)

type model struct {
	ctx      context.Context
	sess     *viewer.Session
	renderer Renderer
	changes  <-chan struct{}
	clock    func() time.Time

	snap     api.Snapshot
	input    textinput.Model
	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model
	focus    focus

	// visible maps table rows to indices in snap.Commits.
	visible []int
	query   string
	filter  *filterModal
	alert   string

	width        int
	height       int
	autoSubmit   bool
	status       string
	lastDuration time.Duration
}

// Run opens the interactive viewer on sess until the user quits or ctx ends.
// A non-empty initialURL is submitted right away.
func Run(ctx context.Context, sess *viewer.Session, r Renderer, initialURL string) error {
	changes, stop := subscribeChanges(sess)
	defer stop()

	if initialURL != "" {
		sess.SetURL(initialURL)
	}
	m := newModel(ctx, sess, r, changes)
	m.autoSubmit = initialURL != ""

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func newModel(ctx context.Context, sess *viewer.Session, r Renderer, changes <-chan struct{}) model {
	m := model{
		ctx:      ctx,
		sess:     sess,
		renderer: r,
		changes:  changes,
		clock:    time.Now,
		viewport: viewport.New(80, 10),
	}
	m.input = textinput.New()
	m.input.Prompt = "URL: "
	m.input.Placeholder = "https://github.com/<owner>/<repo>/blob/<branch>/<path>.md"
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.initTable()
	m.apply(sess.Snapshot())
	m.setFocus(focusURL)
	return m
}

func (m model) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock()
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, waitForChange(m.changes)}
	if m.autoSubmit {
		cmds = append(cmds, submitCmd(m.ctx, m.sess, m.input.Value()))
	}
	return tea.Batch(cmds...)
}

// apply takes in a fresh snapshot. The input is only overwritten when the
// session's URL itself moved, so typing is never clobbered.
func (m *model) apply(snap api.Snapshot) {
	prev := m.snap
	m.snap = snap
	if snap.URL != prev.URL {
		m.input.SetValue(snap.URL)
	}
	if !sameCommits(prev.Commits, snap.Commits) {
		m.updateRows()
		m.applyLayout()
	} else if prev.Selected != snap.Selected {
		m.updateRows()
	}
	if snap.Markdown != prev.Markdown || prev.HasRef != snap.HasRef {
		m.renderContent()
		m.viewport.SetYOffset(snap.ScrollOffset)
	} else if prev.Loading && !snap.Loading {
		m.viewport.SetYOffset(snap.ScrollOffset)
	}
}

func sameCommits(a, b []api.Commit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].SHA != b[i].SHA {
			return false
		}
	}
	return true
}

func (m *model) renderContent() {
	if m.snap.Markdown == "" {
		m.viewport.SetContent("")
		return
	}
	out, err := m.renderer.Terminal(m.snap.Markdown, m.viewport.Width)
	if err != nil {
		m.status = fmt.Sprintf("Render failed: %v", err)
		out = m.snap.Markdown
	}
	m.viewport.SetContent(out)
}

func (m *model) setFocus(f focus) {
	m.focus = f
	if f == focusURL {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	if f == focusCommits {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.apply(m.sess.Snapshot())
		return m, waitForChange(m.changes)
	case alertMsg:
		m.alert = msg.text
		return m, nil
	case actionResultMsg:
		m.apply(m.sess.Snapshot())
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.action
			if m.focus == focusURL && len(m.snap.Commits) > 0 {
				m.setFocus(focusCommits)
			}
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		if m.filter != nil {
			m.filter.resizeForTerm(m.width, m.height)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.forward(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}
	if m.filter != nil {
		return m.handleFilterKey(msg)
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.setFocus((m.focus + 1) % 3)
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + 2) % 3)
		return m, nil
	}

	switch m.focus {
	case focusURL:
		switch msg.String() {
		case "enter":
			return m, submitCmd(m.ctx, m.sess, m.input.Value())
		case "esc":
			m.setFocus(focusCommits)
			return m, nil
		}
	case focusCommits:
		switch msg.String() {
		case "q", "esc", "ctrl+q":
			return m, tea.Quit
		case "enter":
			if c, ok := m.cursorCommit(); ok {
				return m, selectCmd(m.ctx, m.sess, c.SHA, m.viewport.YOffset)
			}
			return m, nil
		case "h":
			return m, selectCmd(m.ctx, m.sess, "", m.viewport.YOffset)
		case "r":
			if m.snap.HasRef {
				return m, refreshCmd(m.ctx, m.sess)
			}
			return m, nil
		case "u":
			m.setFocus(focusURL)
			return m, nil
		case "/":
			m.filter = newFilterModal(m.query, m.width, m.height)
			return m, nil
		}
	case focusContent:
		switch msg.String() {
		case "q", "ctrl+q":
			return m, tea.Quit
		case "esc":
			m.setFocus(focusCommits)
			return m, nil
		}
	}
	return m.forward(msg)
}

// handleFilterKey narrows the table live while the filter modal is open.
func (m model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.query = m.filter.value()
		m.filter = nil
		m.updateRows()
		return m, nil
	case "esc", "ctrl+q":
		m.query = ""
		m.filter = nil
		m.updateRows()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.update(msg)
	m.query = m.filter.value()
	m.updateRows()
	return m, cmd
}

// forward routes msg to the focused component.
func (m model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusURL:
		m.input, cmd = m.input.Update(msg)
	case focusCommits:
		m.table, cmd = m.table.Update(msg)
	case focusContent:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.input.Width = max(20, m.width-lipgloss.Width(m.input.Prompt)-2)

	rows := len(m.snap.Commits)
	tableH := min(max(4, rows+2), max(4, m.height/3))
	m.table.SetHeight(tableH)
	m.table.SetWidth(m.width)
	m.table.SetColumns(m.columnsFor(m.width))

	// header, blank, table, rule, footer
	vpH := max(3, m.height-tableH-4)
	offset := m.viewport.YOffset
	m.viewport.Width = m.width
	m.viewport.Height = vpH
	m.renderContent()
	m.viewport.SetYOffset(offset)
}

var (
	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
)

func (m model) renderFooter() string {
	var left string
	switch m.focus {
	case focusURL:
		left = "enter=load • tab=next • esc=commits"
	case focusCommits:
		left = "↑/↓ navigate • enter=show • h=head • /=filter • r=refresh • u=url • q=exit"
	case focusContent:
		left = "↑/↓/pgup/pgdn scroll • esc=commits • q=exit"
	}

	var right string
	if m.snap.Loading {
		right = m.spinner.View() + " Loading... • "
	} else if m.status != "" {
		if m.lastDuration > 0 {
			right = fmt.Sprintf("%s (%s) • ", m.status, m.lastDuration.Round(time.Millisecond))
		} else {
			right = m.status + " • "
		}
	}
	if m.query != "" {
		right += fmt.Sprintf("%d/%d commits ", len(m.visible), len(m.snap.Commits))
	} else {
		right += fmt.Sprintf("%d commits ", len(m.snap.Commits))
	}

	width := max(m.width, 40)
	space := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", space) + right
}

func (m model) View() string {
	input := m.input.View()
	if m.focus == focusURL {
		input = focusStyle.Render("›") + " " + input
	} else {
		input = "  " + input
	}
	var b strings.Builder
	b.WriteString(input + "\n\n")
	if len(m.snap.Commits) > 0 {
		b.WriteString(m.table.View() + "\n")
	} else if m.snap.HasRef && !m.snap.Loading {
		b.WriteString("(no commits)\n")
	}
	rule := strings.Repeat("─", max(m.width, 40))
	if m.focus == focusContent {
		b.WriteString(focusStyle.Render(rule) + "\n")
	} else {
		b.WriteString(ruleStyle.Render(rule) + "\n")
	}
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(m.renderFooter())
	base := b.String()

	switch {
	case m.alert != "":
		return centerOver(base, alertBox(m.alert, m.width), m.width, m.height)
	case m.filter != nil:
		return centerOver(base, m.filter.View(), m.width, m.height)
	}
	return base
}
