// Package workdir manages the local directory holding recordings and logs.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// LogFile is the name of the interactive session log.
const LogFile = "scribe.log"

// Root returns the base directory for scribe working files:
//
//	$HOME/Documents/Alkime/Scribe
//
// SCRIBE_HOME overrides it.
func Root() (string, error) {
	if dir := os.Getenv("SCRIBE_HOME"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, "Documents", "Alkime", "Scribe"), nil
}

// RecordingsDir returns the directory recording artifacts are written to.
func RecordingsDir() (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "recordings"), nil
}

// FilePath returns the full path for a file in the root directory.
func FilePath(filename string) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, filename), nil
}

// Prep ensures the root and recordings directories exist.
func Prep() error {
	dir, err := RecordingsDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create working directory %s: %w", dir, err)
	}

	return nil
}
