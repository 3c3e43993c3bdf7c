// Package formatting rewrites raw dictated section text into clean clinical
// prose using an LLM.
package formatting

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrMissingAPIKey is returned when the provider key is not configured.
	ErrMissingAPIKey = errors.New("API key required")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("formatter returned no text")
	// ErrBlankInput is returned for whitespace-only input; nothing is sent.
	ErrBlankInput = errors.New("nothing to format")
)

// Formatter formats one section's text. section is the section key, e.g.
// "physicalExamination".
type Formatter interface {
	Format(ctx context.Context, section, text string) (string, error)
}

func prepare(ctx context.Context, text string, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if strings.TrimSpace(text) == "" {
		return ctx, func() {}, ErrBlankInput
	}

	if timeout <= 0 {
		return ctx, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, nil
}

func finish(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
