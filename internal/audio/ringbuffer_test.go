package audio_test

import (
	"math"
	"testing"

	"github.com/alkime/scribe/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRingBuffer(t *testing.T) {
	t.Parallel()

	buf := audio.NewSampleRingBuffer(5)
	require.Nil(t, buf.ReadSamples(5))

	buf.Write([]int16{1, 2})
	buf.Write([]int16{3, 4, 5, 6, 7})

	assert.Equal(t, []int16{3, 4, 5, 6, 7}, buf.ReadSamples(5))
	assert.Equal(t, []int16{6, 7}, buf.ReadSamples(2))
	assert.Equal(t, 5, buf.Count())
	assert.Nil(t, buf.ReadSamples(0))

	buf.Reset()
	assert.Equal(t, 0, buf.Count())
	assert.Zero(t, buf.Level(5))
}

func TestRMS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples []int16
		want    float64
	}{
		{name: "silence", samples: []int16{0, 0, 0}, want: 0},
		{name: "empty", samples: nil, want: 0},
		{name: "full scale", samples: []int16{math.MaxInt16, -math.MaxInt16}, want: 1},
		{name: "half scale", samples: []int16{16384, -16384}, want: 16384.0 / math.MaxInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, audio.RMS(tt.samples), 1e-6)
		})
	}
}

func TestBytesToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []byte
		expected []int16
	}{
		{name: "empty", input: []byte{}, expected: nil},
		{name: "multiple samples", input: []byte{0x01, 0x00, 0x02, 0x00}, expected: []int16{1, 2}},
		{name: "negative sample", input: []byte{0xFF, 0xFF}, expected: []int16{-1}},
		{name: "odd byte count truncates", input: []byte{0x01, 0x00, 0x02}, expected: []int16{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, audio.BytesToInt16(tt.input))
		})
	}
}
