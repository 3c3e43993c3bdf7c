// Package style defines lipgloss styles for the TUI.
package style

import "github.com/charmbracelet/lipgloss"

// Names omit a "Style" suffix; call sites read style.Title.
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	Subtitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	// Section frames an unselected section.
	Section = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)

	// Selected frames the section under the cursor.
	Selected = Section.
			BorderForeground(lipgloss.Color("62"))

	// Recording frames the section bound to the active recording.
	Recording = Section.
			BorderForeground(lipgloss.Color("196"))

	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	Key = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	Progress = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	// Label is used for inline labels such as "Patient:".
	Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255"))

	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))
)
