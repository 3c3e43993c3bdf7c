// Package transcription turns recorded audio into text.
package transcription

import (
	"context"
	"errors"
	"net/http"

	"github.com/alkime/scribe/internal/audio"
)

// Transcription failures.
var (
	// ErrEmptyAudio means the artifact holds no audio; nothing was sent.
	ErrEmptyAudio = errors.New("recording is empty")
	// ErrNoSpeechDetected means the service answered but found no text.
	ErrNoSpeechDetected = errors.New("no speech detected")
	// ErrServiceUnavailable covers network, auth and transient service
	// failures. It is the only failure worth retrying with the same artifact.
	ErrServiceUnavailable = errors.New("transcription service unavailable")
	// ErrRejected means the service refused the request itself; the same
	// artifact fails the same way again.
	ErrRejected = errors.New("transcription rejected")
)

// Transcriber converts an artifact into text. Implementations hold no state
// between calls and never retry.
type Transcriber interface {
	Transcribe(ctx context.Context, artifact audio.Artifact) (string, error)
}

// Retryable reports whether err may succeed when the same artifact is
// submitted again.
func Retryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// rejectedStatus reports whether an HTTP status is a client error that a
// resend cannot fix. Expired auth, timeouts and rate limits are transient.
func rejectedStatus(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return status >= 400 && status < 500
}
