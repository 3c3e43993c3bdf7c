package tui

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alkime/scribe/internal/scribe"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type fakeController struct {
	mu       sync.Mutex
	state    scribe.State
	events   chan scribe.Event
	started  []scribe.Label
	formats  []scribe.Label
	draft    scribe.Note
	draftErr error
	savedID  string
}

func newFakeController() *fakeController {
	st := scribe.State{}
	for _, l := range scribe.Labels() {
		st.Sections = append(st.Sections, scribe.SectionBuffer{Label: l})
	}
	return &fakeController{state: st, events: make(chan scribe.Event, 16)}
}

func (f *fakeController) StartRecording(_ context.Context, label scribe.Label) (scribe.StartResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, label)
	f.state.Status = scribe.Capturing
	f.state.ActiveLabel = label
	f.state.Elapsed = 3 * time.Second
	f.events <- scribe.Event{
		State:  f.state,
		Notice: &scribe.Notice{Kind: scribe.NoticeRecordingStarted, Label: label, Message: "Recording " + label.Title()},
	}
	return scribe.StartResult{Started: true, Label: label}, nil
}

func (f *fakeController) RetryTranscription(context.Context) (scribe.Outcome, error) {
	return scribe.Outcome{}, scribe.ErrNothingToRetry
}

func (f *fakeController) FormatSection(_ context.Context, label scribe.Label) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formats = append(f.formats, label)
	return "", nil
}

func (f *fakeController) FormatAll(context.Context) (scribe.FormatSummary, error) {
	return scribe.FormatSummary{}, scribe.ErrNothingToFormat
}

func (f *fakeController) EditText(label scribe.Label, base, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.state.Sections {
		if f.state.Sections[i].Label != label {
			continue
		}
		if f.state.Sections[i].Text != base {
			return scribe.ErrSectionChanged
		}
		f.state.Sections[i].Text = text
	}
	return nil
}

func (f *fakeController) ClearSection(label scribe.Label) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.state.Sections {
		if f.state.Sections[i].Label == label {
			f.state.Sections[i].Text = ""
		}
	}
	return nil
}

// appendText simulates a transcript landing in label.
func (f *fakeController) appendText(label scribe.Label, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.state.Sections {
		if f.state.Sections[i].Label == label {
			f.state.Sections[i].Text += text
		}
	}
}

func (f *fakeController) NewNote(context.Context) {}

func (f *fakeController) PollElapsed() scribe.State { return f.Snapshot() }

func (f *fakeController) Snapshot() scribe.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state
	st.Sections = append([]scribe.SectionBuffer(nil), f.state.Sections...)
	return st
}

func (f *fakeController) Draft() (scribe.Note, error) {
	return f.draft, f.draftErr
}

func (f *fakeController) MarkSaved(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedID = id
	f.state.NoteID = id
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel_Navigation(t *testing.T) {
	m := New(Config{Controller: newFakeController()})
	assert.Equal(t, scribe.Symptoms, m.Selected())

	m, _ = update(t, m, keyRunes("j"))
	assert.Equal(t, scribe.PhysicalExamination, m.Selected())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, scribe.Management, m.Selected())
}

func TestModel_RecordTargetsSelectedSection(t *testing.T) {
	ctrl := newFakeController()
	m := New(Config{Controller: ctrl})

	m, _ = update(t, m, keyRunes("j"))
	m, cmd := update(t, m, keyRunes("r"))
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(opDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, []scribe.Label{scribe.PhysicalExamination}, ctrl.started)

	m, _ = update(t, m, eventMsg(<-ctrl.events))
	view := m.View()
	assert.Contains(t, view, "Recording Physical Examination")
	assert.Contains(t, view, "0:03")
}

func TestModel_ShowsControllerErrors(t *testing.T) {
	m := New(Config{Controller: newFakeController()})

	m, cmd := update(t, m, keyRunes("F"))
	m, _ = update(t, m, cmd())

	assert.Contains(t, m.View(), scribe.ErrNothingToFormat.Error())
}

func TestModel_EditSection(t *testing.T) {
	ctrl := newFakeController()
	m := New(Config{Controller: ctrl})

	m, _ = update(t, m, keyRunes("e"))
	require.True(t, m.editing)

	m, _ = update(t, m, keyRunes("cough"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.False(t, m.editing)
	assert.Equal(t, "cough", ctrl.Snapshot().Text(scribe.Symptoms))
	assert.Contains(t, m.View(), "cough")

	m, _ = update(t, m, keyRunes("e"))
	m, _ = update(t, m, keyRunes(" more"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "cough", ctrl.Snapshot().Text(scribe.Symptoms))
}

func TestModel_ExternalEditAppliesToOriginalSection(t *testing.T) {
	ctrl := newFakeController()
	m := New(Config{Controller: ctrl})

	// the cursor moves while the editor is open
	m, _ = update(t, m, keyRunes("j"))
	m, _ = update(t, m, externalEditMsg{label: scribe.Symptoms, base: "", text: "edited elsewhere"})

	assert.Equal(t, "edited elsewhere", ctrl.Snapshot().Text(scribe.Symptoms))
	assert.Empty(t, ctrl.Snapshot().Text(scribe.PhysicalExamination))
}

func TestModel_EditRefusedWhileSectionRecording(t *testing.T) {
	ctrl := newFakeController()
	m := New(Config{Controller: ctrl})

	m, cmd := update(t, m, keyRunes("r"))
	m, _ = update(t, m, cmd())
	require.Equal(t, scribe.Capturing, m.state.Status)

	m, _ = update(t, m, keyRunes("e"))
	assert.False(t, m.editing)
	require.ErrorIs(t, m.err, scribe.ErrSectionRecording)

	m, cmd = update(t, m, keyRunes("E"))
	assert.Nil(t, cmd)
	require.ErrorIs(t, m.err, scribe.ErrSectionRecording)

	// other sections stay editable
	m, _ = update(t, m, keyRunes("j"))
	m, _ = update(t, m, keyRunes("e"))
	assert.True(t, m.editing)
}

func TestModel_EditCommitKeepsTranscriptArrivingMidEdit(t *testing.T) {
	ctrl := newFakeController()
	m := New(Config{Controller: ctrl})

	m, _ = update(t, m, keyRunes("e"))
	m, _ = update(t, m, keyRunes("cough"))
	ctrl.appendText(scribe.Symptoms, "fever")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, m.editing)
	require.ErrorIs(t, m.err, scribe.ErrSectionChanged)
	assert.Equal(t, "fever", ctrl.Snapshot().Text(scribe.Symptoms))

	// a second commit overwrites knowingly
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.False(t, m.editing)
	require.NoError(t, m.err)
	assert.Equal(t, "cough", ctrl.Snapshot().Text(scribe.Symptoms))
}

func TestModel_ExternalEditRefusedWhenSectionChanged(t *testing.T) {
	ctrl := newFakeController()
	ctrl.appendText(scribe.Symptoms, "fever")
	m := New(Config{Controller: ctrl})

	m, _ = update(t, m, externalEditMsg{label: scribe.Symptoms, base: "", text: "edited elsewhere"})

	require.ErrorIs(t, m.err, scribe.ErrSectionChanged)
	assert.Equal(t, "fever", ctrl.Snapshot().Text(scribe.Symptoms))
}

func TestModel_ShowsUnappliedTranscript(t *testing.T) {
	ctrl := newFakeController()
	ctrl.state.LastTranscript = "late transcript"
	m := New(Config{Controller: ctrl})

	assert.Contains(t, m.View(), "Unapplied transcript: late transcript")
}

func TestModel_ExternalEditFailure(t *testing.T) {
	ctrl := newFakeController()
	m := New(Config{Controller: ctrl})

	m, _ = update(t, m, externalEditMsg{label: scribe.Symptoms, err: errors.New("editor failed: exit status 1")})

	assert.Empty(t, ctrl.Snapshot().Text(scribe.Symptoms))
	assert.Contains(t, m.View(), "exit status 1")
}

func TestModel_Save(t *testing.T) {
	ctrl := newFakeController()
	ctrl.draft = scribe.Note{PatientID: "p1", Sections: map[scribe.Label]string{scribe.Symptoms: "cough"}}

	var saved scribe.Note
	m := New(Config{
		Controller: ctrl,
		Save: func(_ context.Context, note scribe.Note) (string, error) {
			saved = note
			return "note-1", nil
		},
	})

	m, cmd := update(t, m, keyRunes("s"))
	m, _ = update(t, m, cmd())

	assert.Equal(t, "p1", saved.PatientID)
	assert.Equal(t, "note-1", ctrl.savedID)
	assert.Contains(t, m.View(), "Note saved")
}

func TestModel_SaveWithoutPatient(t *testing.T) {
	ctrl := newFakeController()
	ctrl.draftErr = scribe.ErrNoPatient
	m := New(Config{Controller: ctrl})

	m, cmd := update(t, m, keyRunes("s"))
	m, _ = update(t, m, cmd())

	assert.Contains(t, m.View(), scribe.ErrNoPatient.Error())
	assert.Empty(t, ctrl.savedID)
}

func TestModel_Program(t *testing.T) {
	ctrl := newFakeController()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := New(Config{
		Controller:   ctrl,
		Events:       ctrl.events,
		PatientName:  "Jane Doe",
		PollInterval: 50 * time.Millisecond,
		Context:      ctx,
		Cancel:       cancel,
	})
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 60))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Jane Doe"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(keyRunes("r"))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Recording Symptoms"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(keyRunes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	assert.Equal(t, []scribe.Label{scribe.Symptoms}, ctrl.started)
	assert.Error(t, ctx.Err())
}
