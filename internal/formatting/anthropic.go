package formatting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic formats sections with Claude.
type Anthropic struct {
	apiKey  string
	model   anthropic.Model
	timeout time.Duration
	client  anthropic.Client
}

// AnthropicConfig configures Anthropic.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint.
	BaseURL string
}

// NewAnthropic creates an Anthropic formatter.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	model := anthropic.ModelClaudeSonnet4_5_20250929
	if cfg.Model != "" {
		model = anthropic.Model(cfg.Model)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Anthropic{
		apiKey:  cfg.APIKey,
		model:   model,
		timeout: cfg.Timeout,
		client:  anthropic.NewClient(opts...),
	}
}

// Format sends the section text to Claude and returns its rewrite.
func (a *Anthropic) Format(ctx context.Context, section, text string) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("%w: set ANTHROPIC_API_KEY or run 'scribe config set-key anthropic <key>'", ErrMissingAPIKey)
	}

	ctx, cancel, err := prepare(ctx, text, a.timeout)
	defer cancel()
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt(section)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(UserPrompt(section, text))),
		},
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to format %s via Anthropic API: %w", section, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(textBlock.Text)
		}
	}
	if sb.Len() == 0 && len(resp.Content) > 0 {
		return "", errors.New("unexpected response type from Anthropic API")
	}

	return finish(sb.String())
}
