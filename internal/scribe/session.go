package scribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/transcription"
	"github.com/google/uuid"
)

// Capturer is the microphone side of a recording.
type Capturer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (audio.Artifact, error)
	// Abort stops capturing and discards the artifact.
	Abort(ctx context.Context) error
	Status() audio.Status
}

// OutcomeKind classifies how a recording's transcription resolved.
type OutcomeKind int

const (
	// Transcribed carries text.
	Transcribed OutcomeKind = iota
	// EmptyTranscript means the service heard nothing.
	EmptyTranscript
	// TranscriptionFailed means the service call errored.
	TranscriptionFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case Transcribed:
		return "transcribed"
	case EmptyTranscript:
		return "empty_transcript"
	case TranscriptionFailed:
		return "transcription_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of one recording's transcription.
type Outcome struct {
	Kind     OutcomeKind
	Text     string
	Err      error
	Artifact audio.Artifact
	// Retryable is set for failures that may succeed when the same artifact
	// is resubmitted.
	Retryable bool
}

// Transcribe runs transcriber on artifact and classifies the result.
func Transcribe(ctx context.Context, transcriber transcription.Transcriber, artifact audio.Artifact) Outcome {
	text, err := transcriber.Transcribe(ctx, artifact)
	text = strings.TrimSpace(text)

	switch {
	case err == nil && text != "":
		return Outcome{Kind: Transcribed, Text: text, Artifact: artifact}
	case err == nil, errors.Is(err, transcription.ErrNoSpeechDetected):
		return Outcome{Kind: EmptyTranscript, Artifact: artifact}
	default:
		return Outcome{
			Kind:      TranscriptionFailed,
			Err:       err,
			Artifact:  artifact,
			Retryable: transcription.Retryable(err),
		}
	}
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithStatusHook registers fn to run after every status transition. fn runs
// without the session lock held.
func WithStatusHook(fn func(Status)) SessionOption {
	return func(s *Session) { s.onStatus = fn }
}

// WithSessionLogger sets the logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// Session is one start/stop recording cycle:
//
//	Idle -> Capturing -> Transcribing -> Idle
//
// End always returns the session to Idle, whatever the transcription does.
type Session struct {
	id          string
	capture     Capturer
	transcriber transcription.Transcriber
	onStatus    func(Status)
	logger      *slog.Logger

	mu     sync.Mutex
	status Status
}

// NewSession creates an idle session.
func NewSession(capture Capturer, transcriber transcription.Transcriber, opts ...SessionOption) *Session {
	s := &Session{
		id:          uuid.NewString(),
		capture:     capture,
		transcriber: transcriber,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", s.id)

	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Status returns the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Begin starts capturing. It fails without side effects unless Idle, and a
// capture error leaves the session Idle.
func (s *Session) Begin(ctx context.Context) error {
	s.mu.Lock()
	if s.status != Idle {
		s.mu.Unlock()
		return ErrSessionBusy
	}

	if err := s.capture.Start(ctx); err != nil {
		s.mu.Unlock()
		s.logger.Warn("failed to start capture", "error", err)
		return fmt.Errorf("failed to start recording: %w", err)
	}
	s.status = Capturing
	s.mu.Unlock()

	s.logger.Debug("session capturing")
	s.notify(Capturing)

	return nil
}

// End stops capturing and transcribes the artifact. Capture failures are
// returned as errors and never reach Transcribing; transcription failures
// are reported in the Outcome.
func (s *Session) End(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.status != Capturing {
		s.mu.Unlock()
		return Outcome{}, ErrNotRecording
	}

	artifact, err := s.capture.Stop(ctx)
	if err != nil {
		s.status = Idle
		s.mu.Unlock()
		s.notify(Idle)
		return Outcome{Artifact: artifact}, fmt.Errorf("failed to stop recording: %w", err)
	}
	s.status = Transcribing
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.status = Idle
		s.mu.Unlock()
		s.notify(Idle)
	}()

	s.notify(Transcribing)
	s.logger.Debug("session transcribing",
		"duration_ms", artifact.Duration.Milliseconds(),
		"bytes", artifact.Size)

	outcome := Transcribe(ctx, s.transcriber, artifact)
	s.logger.Debug("session transcribed", "outcome", outcome.Kind.String())

	return outcome, nil
}

// Abort stops an in-progress capture and discards it. It is a no-op unless
// Capturing.
func (s *Session) Abort(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != Capturing {
		return nil
	}

	s.status = Idle
	if err := s.capture.Abort(ctx); err != nil {
		return fmt.Errorf("failed to abort recording: %w", err)
	}

	return nil
}

func (s *Session) notify(st Status) {
	if s.onStatus != nil {
		s.onStatus(st)
	}
}
