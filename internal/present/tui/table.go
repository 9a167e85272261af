package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mithrel/mdhistory/internal/present/format"
	"github.com/mithrel/mdhistory/internal/util"
	"github.com/mithrel/mdhistory/pkg/api"
)

const (
	shaWidth  = 7
	dateWidth = 12
	ageWidth  = 14
)

func (m *model) initTable() {
	m.table = table.New(table.WithColumns(m.columnsFor(60)), table.WithFocused(false))
	m.applyStyles()
}

// updateRows rebuilds the rows from the snapshot's commits, applying the
// fuzzy filter, and keeps the cursor on the selected commit when visible.
func (m *model) updateRows() {
	labels := make([]string, len(m.snap.Commits))
	for i, c := range m.snap.Commits {
		labels[i] = format.CommitLabel(c)
	}
	m.visible = util.FuzzyIndices(m.query, labels)

	rows := make([]table.Row, 0, len(m.visible))
	for _, i := range m.visible {
		rows = append(rows, commitRow(m.snap.Commits[i], m.now()))
	}
	m.table.SetRows(rows)
	m.syncCursor()
}

func commitRow(c api.Commit, now time.Time) table.Row {
	return table.Row{
		c.ShortSHA(),
		c.Date.UTC().Format(format.DateLayout),
		humanize.RelTime(c.Date, now, "ago", "from now"),
		format.OneLine(c.Message),
	}
}

// syncCursor moves the cursor onto the selected commit, if it is listed.
func (m *model) syncCursor() {
	for row, i := range m.visible {
		if m.snap.Commits[i].SHA == m.snap.Selected {
			m.table.SetCursor(row)
			return
		}
	}
	if m.table.Cursor() >= len(m.visible) {
		m.table.SetCursor(max(0, len(m.visible)-1))
	}
}

// cursorCommit returns the commit under the cursor.
func (m *model) cursorCommit() (api.Commit, bool) {
	row := m.table.Cursor()
	if row < 0 || row >= len(m.visible) {
		return api.Commit{}, false
	}
	return m.snap.Commits[m.visible[row]], true
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

func (m *model) columnsFor(width int) []table.Column {
	msgW := width - shaWidth - dateWidth - ageWidth - 8
	if msgW < 12 {
		msgW = 12
	}
	return []table.Column{
		{Title: "SHA", Width: shaWidth},
		{Title: "Date", Width: dateWidth},
		{Title: "Age", Width: ageWidth},
		{Title: "Message", Width: msgW},
	}
}
