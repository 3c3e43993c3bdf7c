// Package labeledspinner is a spinner with a title and a dimmed detail.
package labeledspinner

import (
	"github.com/alkime/scribe/internal/tui/style"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model renders "<spinner> Title  detail" on one line.
type Model struct {
	Spinner spinner.Model
	Title   string
	Detail  string
}

// New creates a labeled spinner.
func New(s spinner.Spinner, title string) Model {
	sp := spinner.New()
	sp.Spinner = s

	return Model{Spinner: sp, Title: title}
}

// Init starts the spinner.
func (ls Model) Init() tea.Cmd {
	return ls.Spinner.Tick
}

// Update advances the spinner on its own ticks and ignores everything else.
func (ls Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return ls, nil
	}

	var cmd tea.Cmd
	ls.Spinner, cmd = ls.Spinner.Update(tick)

	return ls, cmd
}

// View renders with the stored detail.
func (ls Model) View() string {
	return ls.ViewWithDetail(ls.Detail)
}

// ViewWithDetail renders with detail computed at render time, e.g. an
// elapsed time.
func (ls Model) ViewWithDetail(detail string) string {
	out := ls.Spinner.View() + " " + style.Title.Render(ls.Title)
	if detail != "" {
		out += "  " + style.Subtitle.Render(detail)
	}
	return out
}
