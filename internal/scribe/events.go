package scribe

import (
	"github.com/alkime/scribe/pkg/channels"
)

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeRecordingStarted    NoticeKind = "recording_started"
	NoticeTranscriptApplied   NoticeKind = "transcript_applied"
	NoticeNoSpeech            NoticeKind = "no_speech_detected"
	NoticeTranscriptionFailed NoticeKind = "transcription_failed"
	NoticeCaptureFailed       NoticeKind = "capture_failed"
	NoticeSectionFormatted    NoticeKind = "section_formatted"
	NoticeFormatFailed        NoticeKind = "format_failed"
	NoticeFormatAllCompleted  NoticeKind = "format_all_completed"
	NoticeContextReset        NoticeKind = "context_reset"
	NoticeTranscriptDiscarded NoticeKind = "transcript_discarded"
)

// Notice is a discrete, human-readable message about something that
// happened. Failures are reported here rather than crashing the caller.
type Notice struct {
	Kind    NoticeKind
	Label   Label
	Message string
	Err     error
	// Retryable marks transcription failures that RetryTranscription can
	// resubmit.
	Retryable bool
}

// IsError reports whether the notice describes a failure.
func (n Notice) IsError() bool {
	return n.Err != nil
}

// Event is delivered to observers on every state change. Notice is non-nil
// when the change comes with a user-facing message.
type Event struct {
	State  State
	Notice *Notice
}

// Observer receives events synchronously, in mutation order, while the
// Controller holds its lock. Implementations must return quickly and must
// not call back into the Controller.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// ChannelObserver forwards events into a channel without blocking. Events
// are dropped when the channel is full.
type ChannelObserver chan<- Event

func (c ChannelObserver) Observe(e Event) {
	_ = channels.SendNonBlock(chan<- Event(c), e)
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
