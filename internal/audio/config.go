package audio

import (
	"github.com/gen2brain/malgo"
)

// DeviceConfig selects the capture format handed to malgo.
type DeviceConfig struct {
	Format          malgo.FormatType
	CaptureChannels int
	SampleRate      int
}

// VoiceDeviceConfig is mono S16 at sampleRate, the format the encoder and
// the transcription services expect.
func VoiceDeviceConfig(sampleRate int) *DeviceConfig {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	return &DeviceConfig{
		Format:          malgo.FormatS16,
		CaptureChannels: DefaultChannels,
		SampleRate:      sampleRate,
	}
}
