package audio_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/alkime/scribe/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      audio.EncoderConfig
		expectError string
	}{
		{
			name:   "valid",
			config: audio.EncoderConfig{SampleRate: 16000, Channels: 1, BufferThreshold: 4096},
		},
		{
			name:        "zero sample rate",
			config:      audio.EncoderConfig{Channels: 1, BufferThreshold: 4096},
			expectError: "sample rate must be positive",
		},
		{
			name:        "stereo",
			config:      audio.EncoderConfig{SampleRate: 16000, Channels: 2, BufferThreshold: 4096},
			expectError: "only mono (1 channel) is supported",
		},
		{
			name:        "zero buffer threshold",
			config:      audio.EncoderConfig{SampleRate: 16000, Channels: 1},
			expectError: "buffer threshold must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.expectError == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestEncoderConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, audio.EncoderConfig{
		SampleRate:      audio.DefaultSampleRate,
		Channels:        audio.DefaultChannels,
		BufferThreshold: audio.DefaultBufferThreshold,
	}, audio.EncoderConfig{}.WithDefaults())

	assert.Equal(t, audio.EncoderConfig{
		SampleRate:      44100,
		Channels:        audio.DefaultChannels,
		BufferThreshold: audio.DefaultBufferThreshold,
	}, audio.EncoderConfig{SampleRate: 44100}.WithDefaults())
}

func TestEncoderConfig_PCMDuration(t *testing.T) {
	t.Parallel()

	cfg := audio.EncoderConfig{}.WithDefaults()
	assert.Equal(t, 128*time.Millisecond, cfg.PCMDuration(int64(audio.DefaultBufferThreshold)))
	assert.Equal(t, time.Second, cfg.PCMDuration(32000))
	assert.Zero(t, cfg.PCMDuration(0))
	assert.Zero(t, audio.EncoderConfig{}.PCMDuration(32000))
}

func TestNewStreamingEncoder_ValidatesInputs(t *testing.T) {
	t.Parallel()

	valid := audio.EncoderConfig{}.WithDefaults()

	tests := []struct {
		name        string
		config      audio.EncoderConfig
		input       <-chan []byte
		output      io.Writer
		expectError string
	}{
		{name: "nil input", config: valid, output: &bytes.Buffer{}, expectError: "input channel cannot be nil"},
		{name: "nil output", config: valid, input: make(chan []byte), expectError: "output writer cannot be nil"},
		{
			name:        "invalid config",
			config:      audio.EncoderConfig{Channels: 1, BufferThreshold: 1},
			input:       make(chan []byte),
			output:      &bytes.Buffer{},
			expectError: "invalid encoder config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			enc, err := audio.NewStreamingEncoder(tt.config, tt.input, tt.output)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
			assert.Nil(t, enc)
		})
	}
}

func newEncoder(t *testing.T, threshold int) (*audio.StreamingEncoder, chan []byte, *bytes.Buffer) {
	t.Helper()

	input := make(chan []byte, 16)
	output := &bytes.Buffer{}
	enc, err := audio.NewStreamingEncoder(
		audio.EncoderConfig{BufferThreshold: threshold}.WithDefaults(), input, output)
	require.NoError(t, err)

	return enc, input, output
}

func TestStreamingEncoder_EncodesChunks(t *testing.T) {
	t.Parallel()

	enc, input, output := newEncoder(t, 200)
	require.NoError(t, enc.Start(context.Background()))

	for i := range 10 {
		chunk := make([]byte, 100)
		for j := range chunk {
			chunk[j] = byte(i + j)
		}
		input <- chunk
	}
	close(input)

	require.NoError(t, enc.Wait())
	assert.Positive(t, output.Len())
	assert.Equal(t, int64(output.Len()), enc.BytesWritten())
}

func TestStreamingEncoder_CloseWithoutData(t *testing.T) {
	t.Parallel()

	enc, input, _ := newEncoder(t, 4096)
	require.NoError(t, enc.Start(context.Background()))

	close(input)
	require.NoError(t, enc.Wait())
}

func TestStreamingEncoder_CancelKeepsDraining(t *testing.T) {
	t.Parallel()

	enc, input, _ := newEncoder(t, 4096)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, enc.Start(ctx))

	cancel()
	time.Sleep(50 * time.Millisecond)

	// producers must never block on a failed encoder
	for range 32 {
		input <- make([]byte, 100)
	}
	close(input)

	err := enc.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestStreamingEncoder_CannotStartTwice(t *testing.T) {
	t.Parallel()

	enc, input, _ := newEncoder(t, 4096)
	require.NoError(t, enc.Start(context.Background()))

	err := enc.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoder already started")

	close(input)
	_ = enc.Wait()
}
