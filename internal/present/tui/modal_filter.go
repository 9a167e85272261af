package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// filterModal is a foreground modal holding the fuzzy commit filter.
type filterModal struct {
	query  textinput.Model
	width  int
	height int
	padX   int
	padY   int
	box    lipglossv2.Style
}

func newFilterModal(query string, termW, termH int) *filterModal {
	m := &filterModal{padX: 2, padY: 1}
	ti := textinput.New()
	ti.Prompt = "filter: "
	ti.Placeholder = "fix typo | abc1234 | Jan 2"
	ti.SetValue(query)
	ti.Focus()
	m.query = ti
	m.resizeForTerm(termW, termH)
	return m
}

func (m *filterModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := int(float64(termW) * 0.6)
	if termW < 80 {
		w = termW - 4
	}
	if w < 40 {
		w = max(36, termW-2)
	}
	if w > 80 {
		w = 80
	}
	h := 7
	m.width, m.height = w, h
	m.box = lipglossv2.NewStyle().
		Width(w).
		Height(h).
		Padding(m.padY, m.padX).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63"))

	innerW := w - 2 - m.padX*2
	m.query.Width = max(12, innerW-lipgloss.Width(m.query.Prompt))
}

func (m *filterModal) value() string {
	return strings.TrimSpace(m.query.Value())
}

func (m *filterModal) update(msg tea.Msg) (*filterModal, tea.Cmd) {
	if x, ok := msg.(tea.WindowSizeMsg); ok {
		m.resizeForTerm(x.Width, x.Height)
		return m, nil
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m *filterModal) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Filter commits")
	help := lipgloss.NewStyle().Faint(true).Render("enter=apply • esc=clear")
	body := strings.Join([]string{header, "", m.query.View(), "", help}, "\n")
	return m.box.Render(body)
}

// alertBox renders a modal message that any key dismisses.
func alertBox(text string, termW int) string {
	w := min(60, max(30, termW-4))
	style := lipglossv2.NewStyle().
		Width(w).
		Padding(1, 2).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("203"))
	body := text + "\n\n" + lipgloss.NewStyle().Faint(true).Render("press any key")
	return style.Render(body)
}

// centerOver draws modal centred on a dimmed copy of base sized to the
// terminal. Unknown sizes fall back to 80x24.
func centerOver(base, modal string, termW, termH int) string {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w, h := lipglossv2.Width(modal), lipglossv2.Height(modal)
	bg := lipglossv2.NewLayer(lipglossv2.NewStyle().Faint(true).Render(base)).
		Width(termW).
		Height(termH)
	fg := lipglossv2.NewLayer(modal).
		Width(w).
		Height(h).
		X(max(0, (termW-w)/2)).
		Y(max(0, (termH-h)/2))
	return lipglossv2.NewCanvas(bg, fg).Render()
}
