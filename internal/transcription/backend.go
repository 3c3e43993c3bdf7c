package transcription

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/audio"
)

// TranscribePath is the backend transcription endpoint.
const TranscribePath = "/transcription/transcribe"

// Request is the transcription endpoint payload.
type Request struct {
	AudioBase64 string `json:"audioBase64"`
	Platform    string `json:"platform"`
	// Format is the audio container, e.g. "mp3" or "m4a".
	Format string `json:"format,omitempty"`
}

// Response is the transcription endpoint result. Older backends answer with
// "transcription" instead of "text".
type Response struct {
	Text          string `json:"text"`
	Transcription string `json:"transcription,omitempty"`
}

// Backend transcribes through the scribe backend.
type Backend struct {
	client   *api.Client
	platform string
	timeout  time.Duration
}

// NewBackend returns a Backend posting to client. A zero timeout disables
// the per-call deadline.
func NewBackend(client *api.Client, platform string, timeout time.Duration) *Backend {
	return &Backend{client: client, platform: platform, timeout: timeout}
}

// Transcribe uploads the artifact base64-encoded.
func (b *Backend) Transcribe(ctx context.Context, artifact audio.Artifact) (string, error) {
	if artifact.Empty() {
		return "", ErrEmptyAudio
	}

	data, err := artifact.ReadAll()
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyAudio
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	req := Request{
		AudioBase64: base64.StdEncoding.EncodeToString(data),
		Platform:    b.platform,
		Format:      strings.TrimPrefix(filepath.Ext(artifact.Path), "."),
	}

	var resp Response
	if err := b.client.Request(ctx, http.MethodPost, TranscribePath, req, &resp); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && rejectedStatus(apiErr.StatusCode) {
			return "", fmt.Errorf("%w: %w", ErrRejected, err)
		}
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		text = strings.TrimSpace(resp.Transcription)
	}
	if text == "" {
		return "", ErrNoSpeechDetected
	}

	return text, nil
}
