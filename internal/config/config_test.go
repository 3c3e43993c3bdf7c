package config_test

import (
	"testing"
	"time"

	"github.com/alkime/scribe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.EnvDevelopment, cfg.Env)
	assert.Equal(t, config.TranscriptionBackend, cfg.TranscriptionProvider)
	assert.Equal(t, config.FormatterBackend, cfg.FormatterProvider)
	assert.Equal(t, 60*time.Second, cfg.TranscriptionTimeout)
	assert.Equal(t, 45*time.Second, cfg.FormatTimeout)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 16000, cfg.SampleRate)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("FORMATTER_PROVIDER", "anthropic")
	t.Setenv("TRANSCRIPTION_PROVIDER", "whisper")
	t.Setenv("FORMAT_TIMEOUT", "5s")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, config.FormatterAnthropic, cfg.FormatterProvider)
	assert.Equal(t, config.TranscriptionWhisper, cfg.TranscriptionProvider)
	assert.Equal(t, 5*time.Second, cfg.FormatTimeout)
}

func TestLoadConfig_UnknownProvider(t *testing.T) {
	t.Setenv("FORMATTER_PROVIDER", "gemini")

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown formatter provider")
}

func TestBuildCSP(t *testing.T) {
	assert.Contains(t, config.BuildCSP("strict"), "object-src 'none'")
	assert.Contains(t, config.BuildCSP("relaxed"), "'unsafe-inline'")
	assert.NotContains(t, config.BuildCSP("relaxed"), "form-action")
}
