package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Artifact is a finished recording on disk.
type Artifact struct {
	ID       string
	Path     string
	Duration time.Duration
	// PCMBytes is the raw input captured; zero for artifacts loaded from disk.
	PCMBytes int64
	// Size is the encoded file size.
	Size       int64
	SampleRate int
}

// ArtifactFromFile wraps an existing audio file.
func ArtifactFromFile(path string) (Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to stat recording %s: %w", path, err)
	}
	if info.IsDir() {
		return Artifact{}, fmt.Errorf("recording %s is a directory", path)
	}

	return Artifact{ID: filepath.Base(path), Path: path, Size: info.Size()}, nil
}

// Empty reports whether the artifact holds no encoded audio.
func (a Artifact) Empty() bool {
	return a.Size == 0
}

// Open opens the encoded audio for reading.
func (a Artifact) Open() (io.ReadCloser, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording %s: %w", a.Path, err)
	}

	return f, nil
}

// ReadAll returns the encoded audio bytes.
func (a Artifact) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording %s: %w", a.Path, err)
	}

	return data, nil
}

// Remove deletes the artifact from disk. Missing files are ignored.
func (a Artifact) Remove() error {
	if a.Path == "" {
		return nil
	}

	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove recording %s: %w", a.Path, err)
	}

	return nil
}
