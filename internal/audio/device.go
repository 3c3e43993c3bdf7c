package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alkime/scribe/pkg/collections"
	"github.com/gen2brain/malgo"
)

// Device is a capture-only microphone handle.
type Device interface {
	// EnumerateDevices lists available capture devices.
	// It ignores any device configuration passed in.
	EnumerateDevices(ctx context.Context) ([]Info, error)

	// CaptureInto initializes the underlying device and uses the provided
	// data channel to write packets of sampled bytes into when Start() is called.
	CaptureInto(ctx context.Context, dataC chan DataPacket) error

	// Start starts the audio device.
	Start(ctx context.Context) error
	// Stop stops the audio device. Once Stop returns no further packets are
	// written. If the device has already been deallocated this is a no-op.
	Stop(ctx context.Context) error

	// IsStarted returns whether the audio device is currently started.
	IsStarted() bool

	// Dealloc releases the microphone and frees resources.
	Dealloc(ctx context.Context)
}

type device struct {
	conf *DeviceConfig

	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
}

// NewDevice returns a malgo-backed microphone.
func NewDevice(conf *DeviceConfig) Device {
	return &device{conf: conf}
}

func (d *device) EnumerateDevices(ctx context.Context) ([]Info, error) {
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	captureDevices, err := devCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to get capture devices: %w", err)
	}

	return collections.Apply(captureDevices, malgoDeviceInfoToDeviceInfo), nil
}

func (d *device) CaptureInto(ctx context.Context, dataC chan DataPacket) error {
	if d.mgDevice != nil {
		return errors.New("capture device already allocated")
	}

	var err error
	d.mgCtx, d.mgDevice, err = d.allocCaptureDevice(dataC)
	if err != nil {
		return fmt.Errorf("failed to create malgo capture device: %w", err)
	}

	return nil
}

func (d *device) Start(ctx context.Context) error {
	if d.mgDevice == nil {
		return errors.New("device nil. have you allocated it with CaptureInto()?")
	}

	if d.mgDevice.IsStarted() {
		return nil
	}

	if err := d.mgDevice.Start(); err != nil {
		return fmt.Errorf("failed to start malgo device: %w", err)
	}

	return nil
}

func (d *device) Stop(ctx context.Context) error {
	if d.mgDevice == nil {
		return nil
	}

	if err := d.mgDevice.Stop(); err != nil {
		return fmt.Errorf("failed to stop malgo device: %w", err)
	}

	return nil
}

func (d *device) Dealloc(ctx context.Context) {
	if d.mgDevice == nil {
		return
	}

	d.mgDevice.Uninit()
	uninitializeContext(d.mgCtx)
	d.mgDevice = nil
	d.mgCtx = nil
}

func (d *device) IsStarted() bool {
	if d.mgDevice == nil {
		return false
	}

	return d.mgDevice.IsStarted()
}

func (d *device) allocCaptureDevice(
	dataC chan DataPacket,
) (*malgo.AllocatedContext, *malgo.Device, error) {
	if dataC == nil {
		return nil, nil, errors.New("data channel is nil. unable to allocate device")
	}
	if d.conf == nil {
		return nil, nil, errors.New("device config is nil")
	}

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Capture)
	devCnf.Capture.Format = d.conf.Format
	devCnf.Capture.Channels = uint32(d.conf.CaptureChannels)
	devCnf.SampleRate = uint32(d.conf.SampleRate)

	callBacks := malgo.DeviceCallbacks{
		Data: func(_, samples []byte, _ uint32) {
			// malgo reuses the sample buffer between callbacks
			packet := make([]byte, len(samples))
			copy(packet, samples)
			dataC <- packet
		},
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callBacks)
	if err != nil {
		uninitializeContext(mgCtx)
		return nil, nil, fmt.Errorf("failed to initialize malgo device: %w", err)
	}

	return mgCtx, mgDevice, nil
}

// Info describes one capture device.
type Info struct {
	Name        string
	IsDefault   bool
	FormatCount int
	Formats     []string
}

func malgoDeviceInfoToDeviceInfo(mdi malgo.DeviceInfo) Info {
	formats := make([]string, len(mdi.Formats))
	for i, mf := range mdi.Formats {
		formats[i] = fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	}
	return Info{
		Name:        mdi.Name(),
		IsDefault:   mdi.IsDefault != 0,
		FormatCount: int(mdi.FormatCount),
		Formats:     formats,
	}
}

// DataPacket is one callback's worth of S16LE PCM bytes.
type DataPacket = []byte

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
