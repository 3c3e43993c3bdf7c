package formatting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alkime/scribe/internal/api"
)

// FormatPath is the backend formatting endpoint.
const FormatPath = "/formatting/format-section"

// Request is the formatting endpoint payload.
type Request struct {
	SectionLabel string `json:"sectionLabel"`
	RawText      string `json:"rawText"`
}

// Backend formats through the scribe backend, which answers with plain text.
type Backend struct {
	client  *api.Client
	timeout time.Duration
}

// NewBackend returns a Backend formatter.
func NewBackend(client *api.Client, timeout time.Duration) *Backend {
	return &Backend{client: client, timeout: timeout}
}

// Format posts the section to the backend.
func (b *Backend) Format(ctx context.Context, section, text string) (string, error) {
	ctx, cancel, err := prepare(ctx, text, b.timeout)
	defer cancel()
	if err != nil {
		return "", err
	}

	var formatted string
	req := Request{SectionLabel: section, RawText: text}
	if err := b.client.Request(ctx, http.MethodPost, FormatPath, req, &formatted); err != nil {
		return "", fmt.Errorf("failed to format %s: %w", section, err)
	}

	return finish(formatted)
}
