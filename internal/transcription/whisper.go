package transcription

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alkime/scribe/internal/audio"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrMissingAPIKey is returned when no OpenAI key is configured.
var ErrMissingAPIKey = errors.New("API key required: set OPENAI_API_KEY or run 'scribe config set-key openai <key>'")

// Whisper transcribes with the OpenAI Whisper API.
type Whisper struct {
	apiKey  string
	client  openai.Client
	timeout time.Duration
}

// WhisperOption customizes Whisper.
type WhisperOption func(*whisperOptions)

type whisperOptions struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL points the client at an OpenAI-compatible server.
func WithBaseURL(url string) WhisperOption {
	return func(o *whisperOptions) { o.baseURL = url }
}

// WithTimeout bounds each transcription call.
func WithTimeout(d time.Duration) WhisperOption {
	return func(o *whisperOptions) { o.timeout = d }
}

// NewWhisper creates a Whisper transcriber.
func NewWhisper(apiKey string, opts ...WhisperOption) *Whisper {
	var o whisperOptions
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}

	return &Whisper{
		apiKey:  apiKey,
		client:  openai.NewClient(reqOpts...),
		timeout: o.timeout,
	}
}

// Transcribe uploads the artifact file to Whisper.
func (w *Whisper) Transcribe(ctx context.Context, artifact audio.Artifact) (string, error) {
	if w.apiKey == "" {
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, ErrMissingAPIKey)
	}
	if artifact.Empty() {
		return "", ErrEmptyAudio
	}

	// The SDK takes the upload filename from *os.File, and Whisper sniffs the
	// format from its extension.
	f, err := os.Open(artifact.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && rejectedStatus(apiErr.StatusCode) {
			return "", fmt.Errorf("%w: Whisper API refused the audio: %w", ErrRejected, err)
		}
		return "", fmt.Errorf("%w: failed to create transcription via Whisper API: %w", ErrServiceUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNoSpeechDetected
	}

	return text, nil
}
