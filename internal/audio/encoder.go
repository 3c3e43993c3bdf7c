package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// StreamingEncoder reads raw PCM bytes from a channel, buffers to a threshold,
// then batch-encodes to MP3 and writes to an io.Writer.
//
// After the first failure (encode error or context cancellation) the encoder
// keeps draining its input without encoding, so producers never block on a
// dead consumer. The failure is reported by Wait.
type StreamingEncoder struct {
	config EncoderConfig
	input  <-chan []byte
	output *countingWriter

	encoder *mp3encoder.Encoder
	buffer  []byte
	failed  bool

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

// NewStreamingEncoder creates a new streaming MP3 encoder reading S16LE PCM
// from input and writing MP3 frames to output.
func NewStreamingEncoder(
	config EncoderConfig,
	input <-chan []byte,
	output io.Writer,
) (*StreamingEncoder, error) {
	if input == nil {
		return nil, errors.New("input channel cannot be nil")
	}

	if output == nil {
		return nil, errors.New("output writer cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder config: %w", err)
	}

	return &StreamingEncoder{ //nolint:exhaustruct // wg, errOnce, err initialized on Start()
		config: config,
		input:  input,
		output: &countingWriter{w: output},
		buffer: make([]byte, 0, config.BufferThreshold),
	}, nil
}

// Start begins the encoding goroutine. Returns error if already started.
func (e *StreamingEncoder) Start(ctx context.Context) error {
	if e.encoder != nil {
		return errors.New("encoder already started")
	}

	// shine-mp3 only writes mono correctly when fed as stereo
	e.encoder = mp3encoder.NewEncoder(e.config.SampleRate, 2)

	e.wg.Go(func() {
		done := ctx.Done()
		for {
			select {
			case data, ok := <-e.input:
				if !ok {
					if !e.failed {
						if err := e.Flush(); err != nil {
							e.fail(fmt.Errorf("failed to flush encoder on shutdown: %w", err))
						}
					}
					return
				}

				if e.failed {
					continue
				}

				e.buffer = append(e.buffer, data...)
				if len(e.buffer) >= e.config.BufferThreshold {
					if err := e.encodeBatch(); err != nil {
						e.fail(err)
					}
				}

			case <-done:
				e.fail(fmt.Errorf("encoder context cancelled: %w", ctx.Err()))
				done = nil
			}
		}
	})

	return nil
}

// encodeBatch converts buffered PCM data to MP3 and writes to output.
func (e *StreamingEncoder) encodeBatch() error {
	if len(e.buffer) == 0 {
		return nil
	}

	numSamples := len(e.buffer) / 2
	monoSamples := make([]int16, numSamples)

	if err := binary.Read(bytes.NewReader(e.buffer), binary.LittleEndian, monoSamples); err != nil {
		return fmt.Errorf("failed to read PCM samples: %w", err)
	}

	stereoSamples := make([]int16, numSamples*2)
	for i, sample := range monoSamples {
		stereoSamples[i*2] = sample
		stereoSamples[i*2+1] = sample
	}

	if err := e.encoder.Write(e.output, stereoSamples); err != nil {
		return fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	e.buffer = e.buffer[:0]

	return nil
}

// Flush encodes any remaining buffered data. Safe to call multiple times.
func (e *StreamingEncoder) Flush() error {
	if err := e.encodeBatch(); err != nil {
		return fmt.Errorf("failed to flush MP3 encoder: %w", err)
	}

	return nil
}

// Wait blocks until the input channel is closed and drained, and returns the
// first error that occurred.
func (e *StreamingEncoder) Wait() error {
	e.wg.Wait()

	return e.err
}

// BytesWritten is the number of MP3 bytes written so far.
func (e *StreamingEncoder) BytesWritten() int64 {
	return e.output.n.Load()
}

func (e *StreamingEncoder) fail(err error) {
	e.failed = true
	e.buffer = e.buffer[:0]
	e.errOnce.Do(func() {
		e.err = err
		slog.Debug("streaming encoder error", "error", err)
	})
}

type countingWriter struct {
	w io.Writer
	n atomic.Int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(int64(n))
	return n, err
}
