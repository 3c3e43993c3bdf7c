package scribe

import (
	"fmt"
	"time"
)

// Status is the recording pipeline state.
type Status int

const (
	Idle Status = iota
	Capturing
	Transcribing
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Transcribing:
		return "transcribing"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// recordingState is owned by the Controller. activeLabel is set iff
// status != Idle.
type recordingState struct {
	status      Status
	activeLabel Label
	elapsed     time.Duration
	level       float64
	lastErr     error
	// lastTranscript is a transcript that was not applied to any section.
	// The next recording or transcript clears it.
	lastTranscript string
}

// State is an immutable snapshot of the Controller.
type State struct {
	Status Status
	// ActiveLabel is the section bound to the current recording, or "" when
	// Idle.
	ActiveLabel Label
	// Elapsed grows while Capturing and is frozen otherwise.
	Elapsed time.Duration
	// Level is the recent input level in [0, 1] while Capturing.
	Level   float64
	LastErr error
	// LastTranscript is the most recent transcript that could not be applied
	// because the note changed while it was in flight, or "". The next
	// recording or transcript clears it.
	LastTranscript string

	// Sections in document order.
	Sections      []SectionBuffer
	Icd10         IcdCodeSelection
	PatientID     string
	NoteID        string
	FormattingAll bool
	// CanRetry is true when a failed transcription can be resubmitted.
	CanRetry bool
	// RetryLabel is the section a retry would append to.
	RetryLabel Label
}

// IsTranscribing reports whether a transcript is on its way.
func (s State) IsTranscribing() bool {
	return s.Status == Transcribing
}

// IsRecording reports whether the microphone is capturing.
func (s State) IsRecording() bool {
	return s.Status == Capturing
}

// Section returns the buffer for l.
func (s State) Section(l Label) SectionBuffer {
	for _, b := range s.Sections {
		if b.Label == l {
			return b
		}
	}
	return SectionBuffer{Label: l}
}

// Text returns the text of section l.
func (s State) Text(l Label) string {
	return s.Section(l).Text
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
