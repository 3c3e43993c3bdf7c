package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"
	// EnvDevelopment represents the local development environment.
	EnvDevelopment = "development"
)

// Transcription providers.
const (
	// TranscriptionBackend posts base64 audio to the scribe backend.
	TranscriptionBackend = "backend"
	// TranscriptionWhisper calls the OpenAI Whisper API directly.
	TranscriptionWhisper = "whisper"
)

// Formatter providers.
const (
	FormatterAnthropic = "anthropic"
	FormatterOpenAI    = "openai"
	FormatterBackend   = "backend"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	// Security settings
	HSTSMaxAge int    `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode    string `envconfig:"CSP_MODE" default:"relaxed"`
	AuthToken  string `envconfig:"AUTH_TOKEN"`
	PublicDir  string `envconfig:"PUBLIC_DIR" default:"./public"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Backend API
	APIURL   string `envconfig:"API_URL" default:"http://localhost:3000"`
	Platform string `envconfig:"PLATFORM" default:"cli"`

	// Providers
	TranscriptionProvider string `envconfig:"TRANSCRIPTION_PROVIDER" default:"backend"`
	FormatterProvider     string `envconfig:"FORMATTER_PROVIDER" default:"backend"`

	OpenAIAPIKey         string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL        string        `envconfig:"OPENAI_BASE_URL"`
	OpenAIChatModel      string        `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	AnthropicAPIKey      string        `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel       string        `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-5-20250929"`
	RequestTimeout       time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	TranscriptionTimeout time.Duration `envconfig:"TRANSCRIPTION_TIMEOUT" default:"60s"`
	FormatTimeout        time.Duration `envconfig:"FORMAT_TIMEOUT" default:"45s"`

	// Audio
	SampleRate   int           `envconfig:"SAMPLE_RATE" default:"16000"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"1s"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks provider names and timeouts.
func (c *Config) Validate() error {
	switch c.TranscriptionProvider {
	case TranscriptionBackend, TranscriptionWhisper:
	default:
		return fmt.Errorf("unknown transcription provider %q", c.TranscriptionProvider)
	}

	switch c.FormatterProvider {
	case FormatterAnthropic, FormatterOpenAI, FormatterBackend:
	default:
		return fmt.Errorf("unknown formatter provider %q", c.FormatterProvider)
	}

	if c.RequestTimeout <= 0 || c.TranscriptionTimeout <= 0 || c.FormatTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}

	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	return nil
}

// IsProduction reports whether the config targets production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		return "default-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'; " +
			"img-src 'self' data:; " +
			"object-src 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	// Development/relaxed CSP
	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data:"
}
