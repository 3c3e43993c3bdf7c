package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/keyring"
	"github.com/alkime/scribe/internal/providers"
	"github.com/alkime/scribe/internal/scribe"
)

// TranscribeCmd transcribes an existing recording.
type TranscribeCmd struct {
	File string `arg:"" required:"" type:"existingfile" help:"Path to an audio file"`
}

// Run executes the transcribe command.
func (c *TranscribeCmd) Run(app *App) error {
	artifact, err := audio.ArtifactFromFile(c.File)
	if err != nil {
		return err
	}

	transcriber, err := providers.Transcriber(app.Config, app.Client)
	if err != nil {
		return fmt.Errorf("failed to set up transcription: %w", err)
	}

	outcome := scribe.Transcribe(context.Background(), transcriber, artifact)
	switch outcome.Kind {
	case scribe.Transcribed:
		fmt.Println(outcome.Text)
	case scribe.EmptyTranscript:
		fmt.Fprintln(os.Stderr, "no speech detected")
	default:
		if outcome.Retryable {
			return fmt.Errorf("%w (try again)", outcome.Err)
		}
		return outcome.Err
	}

	return nil
}

// FormatCmd formats section text. The text comes from a file when the
// argument names one.
type FormatCmd struct {
	Section string `arg:"" required:"" help:"Section: symptoms, physicalExamination, labInvestigations, imaging, diagnosis, management"`
	Text    string `arg:"" required:"" help:"Text to format, or a path to a file holding it"`
}

// Run executes the format command.
func (c *FormatCmd) Run(app *App) error {
	label, err := scribe.ParseLabel(c.Section)
	if err != nil {
		return err
	}

	text, err := readTextArg(c.Text)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return scribe.ErrNothingToFormat
	}

	formatter, err := providers.Formatter(app.Config, app.Client)
	if err != nil {
		return fmt.Errorf("failed to set up formatting: %w", err)
	}

	formatted, err := formatter.Format(context.Background(), label.String(), text)
	if err != nil {
		return err
	}
	fmt.Println(formatted)

	return nil
}

// readTextArg returns the contents of arg when it names a regular file and
// arg itself otherwise.
func readTextArg(arg string) (string, error) {
	info, err := os.Stat(arg)
	if err != nil || info.IsDir() {
		return arg, nil //nolint:nilerr // not a file: the argument is the text
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", arg, err)
	}

	return string(data), nil
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run(app *App) error {
	adev := audio.NewDevice(nil)
	devices, err := adev.EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		marker := " "
		if dev.IsDefault {
			marker = "*"
		}
		fmt.Printf("%s %s (%d formats)\n", marker, dev.Name, dev.FormatCount)
		app.Logger.Debug("audio device", "name", dev.Name, "formats", dev.Formats)
	}

	return nil
}

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetKey   SetKeyCmd   `cmd:"" help:"Store an API key in system keychain"`
	ListKeys ListKeysCmd `cmd:"" name:"list-keys" help:"Show which API keys are configured"`
}

// SetKeyCmd stores an API key in the system keychain.
type SetKeyCmd struct {
	Service string `arg:"" enum:"openai,anthropic" help:"Service name (openai or anthropic)"`
	Secret  string `arg:"" help:"API key value"`
}

// Run executes the set-key command.
func (c *SetKeyCmd) Run() error {
	if strings.TrimSpace(c.Secret) == "" {
		return errors.New("API key cannot be empty")
	}

	apiKey, err := keyring.APIKeyFromServiceName(c.Service)
	if err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	if err := keyring.Set(apiKey, c.Secret); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Printf("%s API key stored in keychain\n", c.Service)

	return nil
}

// ListKeysCmd shows which API keys are configured and which providers use
// them.
type ListKeysCmd struct{}

// Run executes the list-keys command.
//
//nolint:unparam // error return required by Kong interface
func (c *ListKeysCmd) Run(app *App) error {
	fmt.Printf("transcription: %s\n", app.Config.TranscriptionProvider)
	fmt.Printf("formatting: %s\n\n", app.Config.FormatterProvider)

	allSet := true
	for _, apiKey := range keyring.AllAPIKeys() {
		if keyring.IsSet(apiKey) {
			fmt.Printf("%s: configured\n", apiKey.DisplayName())
		} else {
			fmt.Printf("%s: not set\n", apiKey.DisplayName())
			allSet = false
		}
	}

	if !allSet {
		fmt.Println("\nRun 'scribe config set-key <service> <key>' to configure.")
	}

	return nil
}
