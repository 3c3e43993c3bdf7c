package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the note editor key bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Record    key.Binding
	Format    key.Binding
	FormatAll key.Binding
	Retry     key.Binding
	Edit      key.Binding
	External  key.Binding
	Clear     key.Binding
	NewNote   key.Binding
	Save      key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding

	// Editing a section.
	Commit key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous section"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next section"),
		),
		Record: key.NewBinding(
			key.WithKeys("r", " "),
			key.WithHelp("r/space", "record/stop"),
		),
		Format: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "format section"),
		),
		FormatAll: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "format all"),
		),
		Retry: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "retry transcription"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		External: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "edit in $EDITOR"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear section"),
		),
		NewNote: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new note"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
		Commit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "keep edit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "discard edit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.Format, k.Edit, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Record, k.Retry},
		{k.Format, k.FormatAll, k.Edit, k.External, k.Clear},
		{k.NewNote, k.Save, k.Quit},
	}
}

type editKeys struct{ KeyMap }

func (k editKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Cancel}
}

func (k editKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
