// Package waveform draws live microphone amplitude as a strip of block
// characters, oldest samples on the left.
package waveform

import (
	"math"
	"strings"

	"github.com/alkime/scribe/internal/tui/style"
	"github.com/alkime/scribe/pkg/uictl"
)

// Index 0 is empty; 1-8 fill from the bottom.
var blocks = []rune(" ▁▂▃▄▅▆▇█")

// Model renders samples read from a Levels control. It has no clock of its
// own: the parent re-renders it on its poll tick.
type Model struct {
	levels uictl.Levels[int16]
	width  int
}

// New creates a waveform width columns wide.
func New(levels uictl.Levels[int16], width int) Model {
	return Model{levels: levels, width: max(1, width)}
}

// SetWidth resizes the strip.
func (m Model) SetWidth(width int) Model {
	m.width = max(1, width)
	return m
}

// View renders the current samples, or a flat baseline when there are none.
func (m Model) View() string {
	var samples []int16
	if m.levels != nil {
		samples = m.levels.Read()
	}
	if len(samples) == 0 {
		return style.Muted.Render(strings.Repeat(string(blocks[1]), m.width))
	}

	var sb strings.Builder
	bucket := max(1, len(samples)/m.width)
	for col := range m.width {
		start := col * bucket
		if start >= len(samples) {
			sb.WriteRune(blocks[0])
			continue
		}
		peak := peakAmplitude(samples[start:min(start+bucket, len(samples))])
		sb.WriteRune(blocks[level(peak)])
	}

	return style.Progress.Render(sb.String())
}

func peakAmplitude(samples []int16) int {
	peak := 0
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	return peak
}

// level maps an amplitude onto 0-8 with a square-root curve so quiet
// speech is still visible.
func level(amp int) int {
	if amp <= 0 {
		return 0
	}
	scaled := math.Sqrt(float64(amp)/math.MaxInt16) * 8
	return min(int(scaled), 8)
}
