package audio

import "errors"

// Capture errors. All of them leave the microphone released.
var (
	// ErrPermissionDenied means the microphone could not be opened: access
	// was refused or the device failed to initialize.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrDeviceBusy means a capture is already in progress.
	ErrDeviceBusy = errors.New("microphone is busy")
	// ErrNothingRecording means Stop was called with no capture in progress.
	ErrNothingRecording = errors.New("nothing is recording")
)
