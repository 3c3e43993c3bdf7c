// Package editor edits a block of text in the user's preferred editor.
package editor

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Command returns the editor to run: $VISUAL, then $EDITOR, then vi.
func Command() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if editor := strings.TrimSpace(os.Getenv(env)); editor != "" {
			return editor
		}
	}

	return "vi"
}

// Session is one external edit. The text lives in a temp file until Result
// reads it back.
type Session struct {
	path string
}

// Prepare writes text to a temp file named after name.
func Prepare(name, text string) (*Session, error) {
	f, err := os.CreateTemp("", "scribe-"+name+"-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create edit file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write edit file: %w", err)
	}

	return &Session{path: f.Name()}, nil
}

// Path is the file being edited.
func (s *Session) Path() string {
	return s.path
}

// Cmd builds the editor process. Editors given with arguments, such as
// "code --wait", are split on whitespace.
func (s *Session) Cmd() *exec.Cmd {
	fields := strings.Fields(Command())
	args := append(fields[1:], s.path)

	slog.Info("Opening section in editor", "editor", fields[0], "path", s.path)

	//nolint:gosec // the editor is the user's own choice
	return exec.Command(fields[0], args...)
}

// Result reads the edited text and removes the file. A trailing newline
// added by the editor is dropped.
func (s *Session) Result() (string, error) {
	defer func() {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove edit file", "path", s.path, "error", err)
		}
	}()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read edit file: %w", err)
	}

	return strings.TrimRight(string(data), "\n"), nil
}

// Discard removes the file without reading it.
func (s *Session) Discard() {
	_ = os.Remove(s.path)
}
