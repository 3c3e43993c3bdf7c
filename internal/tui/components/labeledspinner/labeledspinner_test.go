package labeledspinner_test

import (
	"testing"

	"github.com/alkime/scribe/internal/tui/components/labeledspinner"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestLabeledSpinner(t *testing.T) {
	m := labeledspinner.New(spinner.Dot, "Transcribing")
	m.Detail = "Symptoms"

	v0 := m.View()
	assert.Contains(t, v0, "Transcribing")
	assert.Contains(t, v0, "Symptoms")
	assert.Contains(t, v0, spinner.Dot.Frames[0])

	m, _ = m.Update(spinner.TickMsg{})
	assert.Contains(t, m.View(), spinner.Dot.Frames[1])

	m, cmd := m.Update(tea.KeyMsg{})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), spinner.Dot.Frames[1])

	assert.NotContains(t, m.ViewWithDetail(""), "Symptoms")
	assert.Contains(t, m.ViewWithDetail("0:42"), "0:42")
}
