package audio

import (
	"errors"
	"time"
)

// pcmSampleBytes is the width of one signed 16-bit capture sample.
const pcmSampleBytes = 2

// Dictation takes are speech, so the recorder captures narrowband mono and
// flushes to the MP3 file every 128ms of audio.
const (
	DefaultSampleRate      = 16000
	DefaultChannels        = 1
	DefaultBufferThreshold = DefaultSampleRate * pcmSampleBytes * 128 / 1000
)

// EncoderConfig shapes how a take's PCM stream becomes the recording
// artifact uploaded for transcription.
type EncoderConfig struct {
	// SampleRate of the capture device, in Hz. The artifact keeps it.
	SampleRate int
	// Channels of captured audio. Only mono takes are recorded.
	Channels int
	// BufferThreshold is how many PCM bytes are held before a flush to the
	// artifact file. Smaller values lose less audio on a crash.
	BufferThreshold int
}

// Validate rejects configs the recorder cannot produce an artifact with.
func (c EncoderConfig) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return errors.New("sample rate must be positive")
	case c.Channels != 1:
		return errors.New("only mono (1 channel) is supported")
	case c.BufferThreshold <= 0:
		return errors.New("buffer threshold must be positive")
	}
	return nil
}

// WithDefaults fills zero fields with the dictation defaults.
func (c EncoderConfig) WithDefaults() EncoderConfig {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}
	if c.BufferThreshold == 0 {
		c.BufferThreshold = DefaultBufferThreshold
	}
	return c
}

// PCMDuration is the length of audio held in n captured PCM bytes.
func (c EncoderConfig) PCMDuration(n int64) time.Duration {
	perSecond := int64(c.SampleRate * c.Channels * pcmSampleBytes)
	if perSecond <= 0 || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(perSecond)
}
