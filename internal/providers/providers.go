// Package providers builds the transcription and formatting clients named by
// the configuration.
package providers

import (
	"errors"
	"fmt"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/config"
	"github.com/alkime/scribe/internal/formatting"
	"github.com/alkime/scribe/internal/keyring"
	"github.com/alkime/scribe/internal/transcription"
)

// ErrBackendUnavailable is returned when a backend provider is configured
// but no backend client exists, as in the gateway itself.
var ErrBackendUnavailable = errors.New("backend provider needs an API client")

// Transcriber returns the configured transcriber. client may be nil unless
// the provider is the backend.
func Transcriber(cfg *config.Config, client *api.Client) (transcription.Transcriber, error) {
	switch cfg.TranscriptionProvider {
	case config.TranscriptionBackend:
		if client == nil {
			return nil, ErrBackendUnavailable
		}
		return transcription.NewBackend(client, cfg.Platform, cfg.TranscriptionTimeout), nil

	case config.TranscriptionWhisper:
		key := keyring.Resolve(cfg.OpenAIAPIKey, keyring.OpenAI)
		if key == "" {
			return nil, fmt.Errorf("whisper: %w", transcription.ErrMissingAPIKey)
		}
		return transcription.NewWhisper(key,
			transcription.WithBaseURL(cfg.OpenAIBaseURL),
			transcription.WithTimeout(cfg.TranscriptionTimeout),
		), nil
	}

	return nil, fmt.Errorf("unknown transcription provider %q", cfg.TranscriptionProvider)
}

// Formatter returns the configured formatter. client may be nil unless the
// provider is the backend.
func Formatter(cfg *config.Config, client *api.Client) (formatting.Formatter, error) {
	switch cfg.FormatterProvider {
	case config.FormatterBackend:
		if client == nil {
			return nil, ErrBackendUnavailable
		}
		return formatting.NewBackend(client, cfg.FormatTimeout), nil

	case config.FormatterAnthropic:
		key := keyring.Resolve(cfg.AnthropicAPIKey, keyring.Anthropic)
		if key == "" {
			return nil, fmt.Errorf("anthropic: %w", formatting.ErrMissingAPIKey)
		}
		return formatting.NewAnthropic(formatting.AnthropicConfig{
			APIKey:  key,
			Model:   cfg.AnthropicModel,
			Timeout: cfg.FormatTimeout,
		}), nil

	case config.FormatterOpenAI:
		key := keyring.Resolve(cfg.OpenAIAPIKey, keyring.OpenAI)
		if key == "" {
			return nil, fmt.Errorf("openai: %w", formatting.ErrMissingAPIKey)
		}
		return formatting.NewOpenAI(formatting.OpenAIConfig{
			APIKey:  key,
			Model:   cfg.OpenAIChatModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.FormatTimeout,
		}), nil
	}

	return nil, fmt.Errorf("unknown formatter provider %q", cfg.FormatterProvider)
}
