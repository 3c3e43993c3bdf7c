package scribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/formatting"
	"github.com/alkime/scribe/internal/transcription"
	"github.com/alkime/scribe/pkg/collections"
)

// ControllerConfig wires a Controller.
type ControllerConfig struct {
	Capture     Capturer
	Transcriber transcription.Transcriber
	Formatter   formatting.Formatter
	// Observer receives every state change. Optional.
	Observer Observer
	Logger   *slog.Logger
	// KeepRecordings leaves artifacts on disk after they are transcribed.
	KeepRecordings bool
}

// StartResult describes what StartRecording did.
type StartResult struct {
	// Stopped is set when a recording was stopped first.
	Stopped *Outcome
	// Started is false when the call only stopped the section's own
	// recording.
	Started bool
	Label   Label
}

type pendingRetry struct {
	label    Label
	artifact audio.Artifact
	gen      uint64
}

// Controller is safe for concurrent use.
type Controller struct {
	capture     Capturer
	transcriber transcription.Transcriber
	coordinator *Coordinator
	observer    Observer
	logger      *slog.Logger
	keep        bool

	mu            sync.Mutex
	rec           recordingState
	session       *Session
	sections      map[Label]*SectionBuffer
	icd10         IcdCodeSelection
	patientID     string
	noteID        string
	generation    uint64
	formattingAll bool
	retry         *pendingRetry
	closed        bool
}

// NewController creates a controller with an empty note and no patient.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Capture == nil {
		return nil, errors.New("capture is required")
	}
	if cfg.Transcriber == nil {
		return nil, errors.New("transcriber is required")
	}
	if cfg.Formatter == nil {
		return nil, errors.New("formatter is required")
	}

	c := &Controller{
		capture:     cfg.Capture,
		transcriber: cfg.Transcriber,
		observer:    cfg.Observer,
		logger:      cfg.Logger,
		keep:        cfg.KeepRecordings,
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.coordinator = newCoordinator(cfg.Formatter, c, c.logger)
	c.sections = loadSections(Note{})

	return c, nil
}

func loadSections(note Note) map[Label]*SectionBuffer {
	sections := make(map[Label]*SectionBuffer, len(labels))
	for _, l := range labels {
		sections[l] = &SectionBuffer{Label: l, Text: note.Text(l)}
	}
	return sections
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	st := State{
		Status:         c.rec.status,
		ActiveLabel:    c.rec.activeLabel,
		Elapsed:        c.rec.elapsed,
		Level:          c.rec.level,
		LastErr:        c.rec.lastErr,
		LastTranscript: c.rec.lastTranscript,
		Sections:       make([]SectionBuffer, 0, len(labels)),
		Icd10:          c.icd10,
		PatientID:      c.patientID,
		NoteID:         c.noteID,
		FormattingAll:  c.formattingAll,
		CanRetry:       c.retry != nil,
	}
	if c.retry != nil {
		st.RetryLabel = c.retry.label
	}
	for _, l := range labels {
		st.Sections = append(st.Sections, *c.sections[l])
	}

	return st
}

func (c *Controller) emit(n *Notice) {
	c.observer.Observe(Event{State: c.snapshotLocked(), Notice: n})
}

// StartRecording toggles recording on label. If label is already recording
// it is stopped. If another section is recording, that recording is stopped
// and its transcript applied before label starts.
func (c *Controller) StartRecording(ctx context.Context, label Label) (StartResult, error) {
	if !label.Valid() {
		return StartResult{}, fmt.Errorf("%w: %q", ErrUnknownSection, label)
	}

	c.mu.Lock()
	status, active := c.rec.status, c.rec.activeLabel
	c.mu.Unlock()

	result := StartResult{Label: label}

	switch status {
	case Transcribing:
		return result, ErrTranscriptionInProgress
	case Capturing:
		outcome, err := c.StopRecording(ctx)
		if err != nil {
			return result, err
		}
		result.Stopped = &outcome
		if active == label {
			return result, nil
		}
	}

	if err := c.begin(ctx, label); err != nil {
		return result, err
	}
	result.Started = true

	return result, nil
}

func (c *Controller) begin(ctx context.Context, label Label) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.rec.status == Transcribing:
		c.mu.Unlock()
		return ErrTranscriptionInProgress
	case c.rec.status == Capturing:
		c.mu.Unlock()
		return ErrSessionBusy
	case c.sections[label].IsFormatting:
		c.mu.Unlock()
		return fmt.Errorf("cannot record %s: %w", label.Title(), ErrSectionFormatting)
	}

	gen := c.generation
	sess := NewSession(c.capture, c.transcriber,
		WithSessionLogger(c.logger),
		WithStatusHook(func(st Status) {
			c.logger.Debug("recording session status", "section", label, "status", st.String())
		}))
	c.session = sess
	c.rec = recordingState{status: Capturing, activeLabel: label}
	c.mu.Unlock()

	err := sess.Begin(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		if abortErr := sess.Abort(ctx); abortErr != nil {
			c.logger.Warn("failed to abort stale recording", "error", abortErr)
		}
		return ErrContextReset
	}
	if c.session != sess {
		// Already stopped by a concurrent StopRecording.
		return err
	}

	if err != nil {
		c.session = nil
		c.rec = recordingState{status: Idle, lastErr: err}
		c.emit(&Notice{
			Kind:    NoticeCaptureFailed,
			Label:   label,
			Message: fmt.Sprintf("Could not start recording: %v", err),
			Err:     err,
		})
		return err
	}

	c.logger.Info("recording started", "section", label, "session_id", sess.ID())
	c.emit(&Notice{
		Kind:    NoticeRecordingStarted,
		Label:   label,
		Message: "Recording " + label.Title(),
	})

	return nil
}

// StopRecording ends the active recording, transcribes it and applies the
// outcome to the section the recording was started on. The controller is
// Idle when it returns, whatever the outcome.
func (c *Controller) StopRecording(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	switch c.rec.status {
	case Idle:
		c.mu.Unlock()
		return Outcome{}, ErrNotRecording
	case Transcribing:
		c.mu.Unlock()
		return Outcome{}, ErrTranscriptionInProgress
	}

	sess, label, gen := c.session, c.rec.activeLabel, c.generation
	c.rec.elapsed = c.capture.Status().Elapsed
	c.rec.level = 0
	c.rec.status = Transcribing
	c.emit(nil)
	c.mu.Unlock()

	outcome, err := sess.End(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		c.discard(outcome.Artifact)
		c.keepDiscardedLocked(outcome)
		c.emit(&Notice{
			Kind:    NoticeTranscriptDiscarded,
			Label:   label,
			Message: "Transcript discarded because the note changed",
			Err:     ErrContextReset,
		})
		return outcome, ErrContextReset
	}
	if c.session == sess {
		c.session = nil
	}

	if err != nil {
		c.discard(outcome.Artifact)
		c.rec = recordingState{status: Idle, elapsed: c.rec.elapsed, lastErr: err}
		c.emit(&Notice{
			Kind:    NoticeCaptureFailed,
			Label:   label,
			Message: fmt.Sprintf("Recording failed: %v", err),
			Err:     err,
		})
		return outcome, err
	}

	c.resolveLocked(label, gen, outcome)

	return outcome, nil
}

// resolveLocked applies a transcription outcome to label and returns the
// controller to Idle, emitting once. The append happens in the same
// critical section as the transition.
func (c *Controller) resolveLocked(label Label, gen uint64, outcome Outcome) {
	idle := recordingState{status: Idle, elapsed: c.rec.elapsed}

	switch outcome.Kind {
	case Transcribed:
		buf := c.sections[label]
		buf.Text = AppendTranscript(buf.Text, outcome.Text)
		c.rec = idle
		c.discard(outcome.Artifact)
		c.logger.Info("transcript applied", "section", label, "chars", len(outcome.Text))
		c.emit(&Notice{
			Kind:    NoticeTranscriptApplied,
			Label:   label,
			Message: "Added dictation to " + label.Title(),
		})

	case EmptyTranscript:
		c.rec = idle
		c.discard(outcome.Artifact)
		c.emit(&Notice{
			Kind:    NoticeNoSpeech,
			Label:   label,
			Message: "No speech detected",
		})

	default:
		idle.lastErr = outcome.Err
		c.rec = idle
		if outcome.Retryable {
			if c.retry != nil && c.retry.artifact.Path != outcome.Artifact.Path {
				c.discard(c.retry.artifact)
			}
			c.retry = &pendingRetry{label: label, artifact: outcome.Artifact, gen: gen}
		} else {
			c.discard(outcome.Artifact)
		}
		c.logger.Warn("transcription failed", "section", label, "retryable", outcome.Retryable, "error", outcome.Err)
		c.emit(&Notice{
			Kind:      NoticeTranscriptionFailed,
			Label:     label,
			Message:   fmt.Sprintf("Transcription failed: %v", outcome.Err),
			Err:       outcome.Err,
			Retryable: outcome.Retryable,
		})
	}
}

// keepDiscardedLocked holds on to a transcript that arrived after the note
// changed, so it can still be shown. Only while Idle.
func (c *Controller) keepDiscardedLocked(outcome Outcome) {
	if outcome.Kind == Transcribed && c.rec.status == Idle {
		c.rec.lastTranscript = outcome.Text
	}
}

// RetryTranscription resubmits the artifact of the last retryable failure.
// The transcript goes to the section the failed recording was bound to.
func (c *Controller) RetryTranscription(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	switch {
	case c.rec.status != Idle:
		c.mu.Unlock()
		return Outcome{}, ErrTranscriptionInProgress
	case c.retry == nil || c.retry.gen != c.generation:
		c.mu.Unlock()
		return Outcome{}, ErrNothingToRetry
	case c.sections[c.retry.label].IsFormatting:
		label := c.retry.label
		c.mu.Unlock()
		return Outcome{}, fmt.Errorf("cannot retry %s: %w", label.Title(), ErrSectionFormatting)
	}

	r := c.retry
	c.retry = nil
	gen := c.generation
	c.rec = recordingState{status: Transcribing, activeLabel: r.label, elapsed: c.rec.elapsed}
	c.emit(nil)
	c.mu.Unlock()

	c.logger.Info("retrying transcription", "section", r.label, "artifact", r.artifact.ID)
	outcome := Transcribe(ctx, c.transcriber, r.artifact)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		c.discard(outcome.Artifact)
		c.keepDiscardedLocked(outcome)
		c.emit(&Notice{
			Kind:    NoticeTranscriptDiscarded,
			Label:   r.label,
			Message: "Transcript discarded because the note changed",
			Err:     ErrContextReset,
		})
		return outcome, ErrContextReset
	}

	c.resolveLocked(r.label, gen, outcome)

	return outcome, nil
}

// PollElapsed refreshes the elapsed time and input level of the active
// capture. It does not notify observers.
func (c *Controller) PollElapsed() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rec.status == Capturing {
		st := c.capture.Status()
		c.rec.elapsed = st.Elapsed
		c.rec.level = st.Level
	}

	return c.snapshotLocked()
}

// FormatSection formats one section and replaces its text with the result.
func (c *Controller) FormatSection(ctx context.Context, label Label) (string, error) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	return c.coordinator.FormatOne(ctx, label, gen)
}

// FormatAll formats every non-blank section in document order, one at a
// time. Failures are reported per section in the summary.
func (c *Controller) FormatAll(ctx context.Context) (FormatSummary, error) {
	c.mu.Lock()
	if c.formattingAll {
		c.mu.Unlock()
		return FormatSummary{}, ErrFormatAllInProgress
	}

	targets := collections.Filter(labels, func(l Label) bool {
		return !c.sections[l].Blank()
	})
	if len(targets) == 0 {
		c.mu.Unlock()
		return FormatSummary{}, ErrNothingToFormat
	}

	gen := c.generation
	c.formattingAll = true
	c.emit(nil)
	c.mu.Unlock()

	summary, err := c.coordinator.FormatAll(ctx, targets, gen)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return summary, ErrContextReset
	}

	c.formattingAll = false
	c.logger.Info("format all completed",
		"formatted", summary.Formatted,
		"failed", len(summary.Failed),
		"skipped", len(summary.Skipped))
	c.emit(&Notice{
		Kind:    NoticeFormatAllCompleted,
		Message: formatAllMessage(summary),
	})

	return summary, err
}

func formatAllMessage(s FormatSummary) string {
	msg := fmt.Sprintf("Formatted %d of %d sections", s.Formatted, s.Attempted)
	if n := len(s.Failed); n > 0 {
		msg += fmt.Sprintf(", %d failed", n)
	}
	return msg
}

func (c *Controller) claimFormat(label Label, gen uint64) (formatClaim, error) {
	if !label.Valid() {
		return formatClaim{}, fmt.Errorf("%w: %q", ErrUnknownSection, label)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	buf := c.sections[label]
	switch {
	case c.generation != gen:
		return formatClaim{}, ErrContextReset
	case c.rec.status != Idle && c.rec.activeLabel == label:
		return formatClaim{}, fmt.Errorf("cannot format %s: %w", label.Title(), ErrSectionRecording)
	case buf.IsFormatting:
		return formatClaim{}, ErrSectionFormatting
	case buf.Blank():
		return formatClaim{}, ErrBlankSection
	}

	buf.IsFormatting = true
	c.emit(nil)

	return formatClaim{label: label, text: buf.Text, gen: gen}, nil
}

func (c *Controller) releaseFormat(claim formatClaim, formatted string, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != claim.gen {
		return ErrContextReset
	}

	buf := c.sections[claim.label]
	buf.IsFormatting = false

	if err != nil {
		c.emit(&Notice{
			Kind:    NoticeFormatFailed,
			Label:   claim.label,
			Message: fmt.Sprintf("Could not format %s: %v", claim.label.Title(), err),
			Err:     err,
		})
		return nil
	}

	buf.Text = formatted
	c.emit(&Notice{
		Kind:    NoticeSectionFormatted,
		Label:   claim.label,
		Message: "Formatted " + claim.label.Title(),
	})

	return nil
}

// SetText replaces a section's text with a user edit.
func (c *Controller) SetText(label Label, text string) error {
	if !label.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSection, label)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	buf := c.sections[label]
	if buf.IsFormatting {
		return ErrSectionFormatting
	}
	buf.Text = text
	c.emit(nil)

	return nil
}

// EditText replaces a section's text with an edit made from base. The edit
// is refused with ErrSectionChanged when the section no longer holds base,
// for instance because a transcript was appended while the user typed.
func (c *Controller) EditText(label Label, base, text string) error {
	if !label.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSection, label)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	buf := c.sections[label]
	switch {
	case buf.IsFormatting:
		return ErrSectionFormatting
	case buf.Text != base:
		return fmt.Errorf("%s: %w", label.Title(), ErrSectionChanged)
	}
	buf.Text = text
	c.emit(nil)

	return nil
}

// ClearSection empties a section.
func (c *Controller) ClearSection(label Label) error {
	return c.SetText(label, "")
}

// SelectIcd10 attaches an ICD-10 code to the note.
func (c *Controller) SelectIcd10(code, description string) error {
	sel, err := NewIcdCodeSelection(code, description)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.icd10 = sel
	c.emit(nil)

	return nil
}

// ClearIcd10 removes the ICD-10 code.
func (c *Controller) ClearIcd10() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.icd10 = IcdCodeSelection{}
	c.emit(nil)
}

// SelectPatient switches to a blank note for patientID. Selecting the
// current patient again changes nothing and returns false.
func (c *Controller) SelectPatient(ctx context.Context, patientID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if patientID == c.patientID {
		return false
	}
	c.resetLocked(ctx, Note{PatientID: patientID}, "Switched patient")

	return true
}

// LoadNote replaces the whole editing context with note.
func (c *Controller) LoadNote(ctx context.Context, note Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(ctx, note, "Loaded note")
}

// NewNote starts a blank note for the current patient.
func (c *Controller) NewNote(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(ctx, Note{PatientID: c.patientID}, "Started a new note")
}

// MarkSaved records the id the backend assigned to the current note.
func (c *Controller) MarkSaved(noteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noteID = noteID
	c.emit(nil)
}

// resetLocked replaces the editing context. Any capture is aborted, and
// transcripts or formatted text still in flight are discarded when they
// arrive.
func (c *Controller) resetLocked(ctx context.Context, note Note, message string) {
	c.generation++

	if c.session != nil && c.rec.status == Capturing {
		if err := c.session.Abort(ctx); err != nil {
			c.logger.Warn("failed to abort recording on reset", "error", err)
		}
	}
	c.session = nil
	c.rec = recordingState{status: Idle}

	if c.retry != nil {
		c.discard(c.retry.artifact)
		c.retry = nil
	}

	c.sections = loadSections(note)
	c.icd10 = note.Icd10
	c.patientID = note.PatientID
	c.noteID = note.ID
	c.formattingAll = false

	c.logger.Info("note context reset", "patient_id", note.PatientID, "note_id", note.ID)
	c.emit(&Notice{Kind: NoticeContextReset, Message: message})
}

// Draft returns the note as it should be saved.
func (c *Controller) Draft() (Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.patientID == "" {
		return Note{}, ErrNoPatient
	}

	note := Note{
		ID:        c.noteID,
		PatientID: c.patientID,
		Sections:  make(map[Label]string, len(labels)),
		Icd10:     c.icd10,
	}
	empty := true
	for _, l := range labels {
		text := strings.TrimSpace(c.sections[l].Text)
		note.Sections[l] = text
		if text != "" {
			empty = false
		}
	}
	if empty {
		return Note{}, ErrEmptyNote
	}

	return note, nil
}

// Close aborts any capture and discards pending retries. Results still in
// flight are dropped.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.generation++

	var err error
	if c.session != nil && c.rec.status == Capturing {
		err = c.session.Abort(ctx)
	}
	c.session = nil
	c.rec = recordingState{status: Idle}
	if c.retry != nil {
		c.discard(c.retry.artifact)
		c.retry = nil
	}

	return err
}

func (c *Controller) discard(a audio.Artifact) {
	if c.keep {
		return
	}
	if err := a.Remove(); err != nil {
		c.logger.Warn("failed to remove recording", "path", a.Path, "error", err)
	}
}
