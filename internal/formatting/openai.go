package formatting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no chat model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI formats sections with an OpenAI chat model.
type OpenAI struct {
	apiKey  string
	model   string
	timeout time.Duration
	client  *goopenai.Client
}

// OpenAIConfig configures OpenAI.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewOpenAI creates an OpenAI chat formatter.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAI{
		apiKey:  cfg.APIKey,
		model:   model,
		timeout: cfg.Timeout,
		client:  goopenai.NewClientWithConfig(clientCfg),
	}
}

// Format sends the section text as a chat completion.
func (o *OpenAI) Format(ctx context.Context, section, text string) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("%w: set OPENAI_API_KEY or run 'scribe config set-key openai <key>'", ErrMissingAPIKey)
	}

	ctx, cancel, err := prepare(ctx, text, o.timeout)
	defer cancel()
	if err != nil {
		return "", err
	}

	resp, err := o.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: o.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: SystemPrompt(section)},
			{Role: goopenai.ChatMessageRoleUser, Content: UserPrompt(section, text)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format %s via OpenAI API: %w", section, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return finish(resp.Choices[0].Message.Content)
}
