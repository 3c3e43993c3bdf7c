// Package tui is the terminal note editor: six note sections, dictation into
// the selected one, and LLM formatting.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alkime/scribe/internal/editor"
	"github.com/alkime/scribe/internal/scribe"
	"github.com/alkime/scribe/internal/tui/components/labeledspinner"
	"github.com/alkime/scribe/internal/tui/components/waveform"
	"github.com/alkime/scribe/pkg/uictl"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrSaveUnavailable is shown when no Save function is configured.
var ErrSaveUnavailable = errors.New("saving is not configured")

// Controller is the part of scribe.Controller the editor drives.
type Controller interface {
	StartRecording(ctx context.Context, label scribe.Label) (scribe.StartResult, error)
	RetryTranscription(ctx context.Context) (scribe.Outcome, error)
	FormatSection(ctx context.Context, label scribe.Label) (string, error)
	FormatAll(ctx context.Context) (scribe.FormatSummary, error)
	EditText(label scribe.Label, base, text string) error
	ClearSection(label scribe.Label) error
	NewNote(ctx context.Context)
	PollElapsed() scribe.State
	Snapshot() scribe.State
	Draft() (scribe.Note, error)
	MarkSaved(noteID string)
}

// SaveFunc persists a note and returns its id.
type SaveFunc func(ctx context.Context, note scribe.Note) (string, error)

// Config wires the editor.
type Config struct {
	Controller Controller
	// Events delivers controller events; the editor re-renders on each.
	Events <-chan scribe.Event
	// Samples feeds the live waveform. Optional.
	Samples uictl.Levels[int16]
	Save    SaveFunc
	// PatientName is shown in the header.
	PatientName  string
	PollInterval time.Duration
	Context      context.Context
	Cancel       context.CancelFunc
}

type (
	tickMsg  time.Time
	eventMsg scribe.Event
	// opDoneMsg carries errors the controller does not turn into notices,
	// such as refusing to record while transcribing.
	opDoneMsg struct{ err error }
	savedMsg  struct {
		id  string
		err error
	}
	externalEditMsg struct {
		label scribe.Label
		base  string
		text  string
		err   error
	}
)

// Model is the bubbletea model for the note editor.
type Model struct {
	cfg     Config
	keys    KeyMap
	help    help.Model
	spinner labeledspinner.Model
	wave    waveform.Model
	meter   progress.Model
	editor  textarea.Model

	state   scribe.State
	cursor  int
	editing bool
	// editBase is the section text the current edit started from.
	editBase string
	notice   *scribe.Notice
	err      error
	width    int
}

// New creates the editor model.
func New(cfg Config) Model {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	ed := textarea.New()
	ed.ShowLineNumbers = false
	ed.SetHeight(6)

	return Model{
		cfg:     cfg,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: labeledspinner.New(spinner.MiniDot, "Transcribing"),
		wave:    waveform.New(cfg.Samples, 40),
		meter: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(20),
			progress.WithoutPercentage(),
		),
		editor: ed,
		state:  cfg.Controller.Snapshot(),
		width:  80,
	}
}

// Init starts polling, the spinner and the event listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.spinner.Init(), m.listen())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.PollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) listen() tea.Cmd {
	if m.cfg.Events == nil {
		return nil
	}
	events := m.cfg.Events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

// Selected is the section under the cursor.
func (m Model) Selected() scribe.Label {
	return scribe.Labels()[m.cursor]
}

// op runs a blocking controller call off the UI goroutine.
func (m Model) op(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.cfg.Context
	return func() tea.Msg {
		return opDoneMsg{err: fn(ctx)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.editor.SetWidth(max(20, msg.Width-4))
		m.wave = m.wave.SetWidth(max(10, msg.Width/2))
		return m, nil

	case tickMsg:
		m.state = m.cfg.Controller.PollElapsed()
		return m, m.tick()

	case eventMsg:
		m.state = msg.State
		if msg.Notice != nil {
			n := *msg.Notice
			m.notice = &n
			m.err = nil
		}
		return m, m.listen()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.meter.Update(msg)
		m.meter = pm.(progress.Model) //nolint:forcetypeassert // progress.Model always returns progress.Model
		return m, cmd

	case opDoneMsg:
		m.err = msg.err
		m.state = m.cfg.Controller.Snapshot()
		return m, nil

	case externalEditMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = m.cfg.Controller.EditText(msg.label, msg.base, msg.text)
		m.state = m.cfg.Controller.Snapshot()
		return m, nil

	case savedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.cfg.Controller.MarkSaved(msg.id)
			m.notice = &scribe.Notice{Message: "Note saved"}
		}
		m.state = m.cfg.Controller.Snapshot()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m.quit()
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cfg.Cancel != nil {
		m.cfg.Cancel()
	}
	return m, tea.Quit
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	label := m.Selected()
	ctrl := m.cfg.Controller

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		m.cursor = (m.cursor + len(scribe.Labels()) - 1) % len(scribe.Labels())

	case key.Matches(msg, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(scribe.Labels())

	case key.Matches(msg, m.keys.Record):
		return m, m.op(func(ctx context.Context) error {
			_, err := ctrl.StartRecording(ctx, label)
			return err
		})

	case key.Matches(msg, m.keys.Format):
		return m, m.op(func(ctx context.Context) error {
			_, err := ctrl.FormatSection(ctx, label)
			return err
		})

	case key.Matches(msg, m.keys.FormatAll):
		return m, m.op(func(ctx context.Context) error {
			_, err := ctrl.FormatAll(ctx)
			return err
		})

	case key.Matches(msg, m.keys.Retry):
		return m, m.op(func(ctx context.Context) error {
			_, err := ctrl.RetryTranscription(ctx)
			return err
		})

	case key.Matches(msg, m.keys.Edit):
		if err := m.canEdit(label); err != nil {
			m.err = err
			return m, nil
		}
		m.editing = true
		m.editBase = m.state.Text(label)
		m.editor.SetValue(m.editBase)
		return m, m.editor.Focus()

	case key.Matches(msg, m.keys.External):
		if err := m.canEdit(label); err != nil {
			m.err = err
			return m, nil
		}
		return m, m.editExternally(label)

	case key.Matches(msg, m.keys.Clear):
		m.err = ctrl.ClearSection(label)

	case key.Matches(msg, m.keys.NewNote):
		return m, m.op(func(ctx context.Context) error {
			ctrl.NewNote(ctx)
			return nil
		})

	case key.Matches(msg, m.keys.Save):
		return m, m.save()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.editor.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Commit):
		err := m.cfg.Controller.EditText(m.Selected(), m.editBase, m.editor.Value())
		m.state = m.cfg.Controller.Snapshot()
		if errors.Is(err, scribe.ErrSectionChanged) {
			// Keep the edit open. A second commit overwrites knowingly.
			m.editBase = m.state.Text(m.Selected())
			m.err = fmt.Errorf("%w: ctrl+s again to overwrite, esc to discard", err)
			return m, nil
		}
		m.editing = false
		m.editor.Blur()
		m.err = err
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) save() tea.Cmd {
	save, ctx := m.cfg.Save, m.cfg.Context
	note, err := m.cfg.Controller.Draft()

	return func() tea.Msg {
		if err != nil {
			return savedMsg{err: err}
		}
		if save == nil {
			return savedMsg{err: ErrSaveUnavailable}
		}
		id, err := save(ctx, note)
		return savedMsg{id: id, err: err}
	}
}

// canEdit refuses to open an edit on the section being recorded or
// transcribed.
func (m Model) canEdit(label scribe.Label) error {
	if m.state.Status != scribe.Idle && m.state.ActiveLabel == label {
		return fmt.Errorf("cannot edit %s: %w", label.Title(), scribe.ErrSectionRecording)
	}
	return nil
}

// editExternally suspends the UI and opens label in the user's editor. The
// result is applied to label even if the cursor has moved since.
func (m Model) editExternally(label scribe.Label) tea.Cmd {
	base := m.state.Text(label)
	session, err := editor.Prepare(string(label), base)
	if err != nil {
		return func() tea.Msg { return externalEditMsg{label: label, err: err} }
	}

	return tea.ExecProcess(session.Cmd(), func(err error) tea.Msg {
		if err != nil {
			session.Discard()
			return externalEditMsg{label: label, err: fmt.Errorf("editor failed: %w", err)}
		}
		text, err := session.Result()
		return externalEditMsg{label: label, base: base, text: text, err: err}
	})
}
