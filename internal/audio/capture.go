package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// levelWindow is ~50ms of samples at 16kHz.
const levelWindow = 800

// Status is a non-blocking snapshot of the capture.
type Status struct {
	Capturing bool
	Elapsed   time.Duration
	// Level is the recent input RMS in [0, 1].
	Level float64
}

// CaptureConfig configures a Capture.
type CaptureConfig struct {
	// Dir receives one MP3 file per recording.
	Dir     string
	Encoder EncoderConfig
}

// CaptureOption customizes a Capture.
type CaptureOption func(*Capture)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CaptureOption {
	return func(c *Capture) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CaptureOption {
	return func(c *Capture) { c.logger = logger }
}

// Capture records the microphone into MP3 artifacts, one recording at a time.
// The device is allocated on Start and released on every exit path from a
// recording.
type Capture struct {
	dev    Device
	cfg    CaptureConfig
	levels *SampleRingBuffer
	logger *slog.Logger
	now    func() time.Time

	mu  sync.Mutex
	rec *recording
}

type recording struct {
	id       string
	path     string
	file     *os.File
	dataC    chan DataPacket
	encoder  *StreamingEncoder
	cancel   context.CancelFunc
	pumpDone chan struct{}
	started  time.Time
	pcmBytes atomic.Int64
}

// NewCapture returns a Capture over dev.
func NewCapture(dev Device, cfg CaptureConfig, opts ...CaptureOption) (*Capture, error) {
	if dev == nil {
		return nil, errors.New("capture device cannot be nil")
	}

	cfg.Encoder = cfg.Encoder.WithDefaults()
	if err := cfg.Encoder.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder config: %w", err)
	}

	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}

	c := &Capture{
		dev:    dev,
		cfg:    cfg,
		levels: NewSampleRingBuffer(cfg.Encoder.SampleRate),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Start opens the microphone and begins recording to a new artifact file.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rec != nil {
		return ErrDeviceBusy
	}

	if err := os.MkdirAll(c.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create recordings directory: %w", err)
	}

	id := uuid.NewString()
	path := filepath.Join(c.cfg.Dir, fmt.Sprintf("%s-%s.mp3", c.now().Format("20060102-150405"), id[:8]))

	dataC := make(chan DataPacket, 64)
	if err := c.dev.CaptureInto(ctx, dataC); err != nil {
		c.dev.Dealloc(ctx)
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	file, err := os.Create(path)
	if err != nil {
		c.dev.Dealloc(ctx)
		return fmt.Errorf("failed to create recording file: %w", err)
	}

	encC := make(chan []byte, 64)
	encoder, err := NewStreamingEncoder(c.cfg.Encoder, encC, file)
	if err != nil {
		c.dev.Dealloc(ctx)
		c.discardFile(file, path)
		return fmt.Errorf("failed to create encoder: %w", err)
	}

	// The encoder outlives the Start call, so it does not inherit ctx.
	encCtx, cancel := context.WithCancel(context.Background())
	if err := encoder.Start(encCtx); err != nil {
		cancel()
		c.dev.Dealloc(ctx)
		c.discardFile(file, path)
		return fmt.Errorf("failed to start encoder: %w", err)
	}

	rec := &recording{
		id:       id,
		path:     path,
		file:     file,
		dataC:    dataC,
		encoder:  encoder,
		cancel:   cancel,
		pumpDone: make(chan struct{}),
	}

	c.levels.Reset()
	go c.pump(rec, encC)

	if err := c.dev.Start(ctx); err != nil {
		c.release(ctx, rec)
		c.discardFile(nil, path)
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	rec.started = c.now()
	c.rec = rec
	c.logger.Debug("capture started", "recording_id", id, "path", path)

	return nil
}

// pump fans device packets into the encoder and the level meter.
func (c *Capture) pump(rec *recording, encC chan<- []byte) {
	defer close(rec.pumpDone)
	defer close(encC)

	for packet := range rec.dataC {
		rec.pcmBytes.Add(int64(len(packet)))
		c.levels.Write(BytesToInt16(packet))
		encC <- packet
	}
}

// Stop ends the recording and returns the finished artifact. The microphone
// is released even when finalizing the file fails.
func (c *Capture) Stop(ctx context.Context) (Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.rec
	if rec == nil {
		return Artifact{}, ErrNothingRecording
	}
	c.rec = nil

	encErr := c.release(ctx, rec)
	artifact := Artifact{
		ID:         rec.id,
		Path:       rec.path,
		Duration:   c.now().Sub(rec.started),
		PCMBytes:   rec.pcmBytes.Load(),
		Size:       rec.encoder.BytesWritten(),
		SampleRate: c.cfg.Encoder.SampleRate,
	}

	if encErr != nil {
		return artifact, fmt.Errorf("failed to finalize recording: %w", encErr)
	}

	c.logger.Debug("capture stopped",
		"recording_id", artifact.ID,
		"duration_ms", artifact.Duration.Milliseconds(),
		"audio_ms", c.cfg.Encoder.PCMDuration(artifact.PCMBytes).Milliseconds(),
		"bytes", artifact.Size)

	return artifact, nil
}

// Abort stops any recording and deletes its artifact.
func (c *Capture) Abort(ctx context.Context) error {
	artifact, err := c.Stop(ctx)
	if errors.Is(err, ErrNothingRecording) {
		return nil
	}
	if rmErr := artifact.Remove(); rmErr != nil {
		c.logger.Warn("failed to remove aborted recording", "error", rmErr)
	}

	return err
}

// Status reports whether a recording is running, for how long, and the
// current input level.
func (c *Capture) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rec == nil {
		return Status{}
	}

	return Status{
		Capturing: true,
		Elapsed:   c.now().Sub(c.rec.started),
		Level:     c.levels.Level(levelWindow),
	}
}

// ReadSamples returns up to n recent input samples.
func (c *Capture) ReadSamples(n int) []int16 {
	return c.levels.ReadSamples(n)
}

// release stops the device, drains the pipeline and frees the microphone.
func (c *Capture) release(ctx context.Context, rec *recording) error {
	var errs []error

	if err := c.dev.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	close(rec.dataC)
	<-rec.pumpDone

	if err := rec.encoder.Wait(); err != nil {
		errs = append(errs, err)
	}
	rec.cancel()

	if err := rec.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close recording file: %w", err))
	}
	c.dev.Dealloc(ctx)

	return errors.Join(errs...)
}

func (c *Capture) discardFile(f *os.File, path string) {
	if f != nil {
		_ = f.Close()
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("failed to remove recording file", "path", path, "error", err)
	}
}

// Dir is the directory artifacts are written to.
func (c *Capture) Dir() string {
	return c.cfg.Dir
}
