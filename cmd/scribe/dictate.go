package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/keyring"
	"github.com/alkime/scribe/internal/logger"
	"github.com/alkime/scribe/internal/providers"
	"github.com/alkime/scribe/internal/scribe"
	"github.com/alkime/scribe/internal/tui"
	"github.com/alkime/scribe/internal/workdir"
	"github.com/alkime/scribe/pkg/channels"
	"github.com/alkime/scribe/pkg/uictl"
	tea "github.com/charmbracelet/bubbletea"
)

// waveSamples is how many recent samples the waveform draws from.
const waveSamples = 800

// DictateCmd is the default command that runs the note editor.
type DictateCmd struct {
	Patient        string `flag:"" optional:"" help:"Patient id to dictate a new note for"`
	Note           string `flag:"" optional:"" help:"Existing note id to continue editing"`
	KeepRecordings bool   `flag:"" help:"Keep recording files after transcription"`
}

// Run executes the dictate command.
//
//nolint:funlen // CLI command with multiple setup steps
func (c *DictateCmd) Run(app *App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := sync.WaitGroup{}

	if err := workdir.Prep(); err != nil {
		return fmt.Errorf("failed to prepare working directory: %w", err)
	}

	logPath, err := workdir.FilePath(workdir.LogFile)
	if err != nil {
		return fmt.Errorf("failed to determine log path: %w", err)
	}
	log, closeLog, err := logger.SetupFileLogger(app.Config, logPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Printf("failed to close log file: %v\n", err)
		}
	}()

	// the default client logs to stderr, which the TUI owns
	client := api.New(app.Config.APIURL, keyring.Credentials{},
		api.WithTimeout(app.Config.RequestTimeout),
		api.WithLogger(log),
	)

	transcriber, err := providers.Transcriber(app.Config, client)
	if err != nil {
		return fmt.Errorf("failed to set up transcription: %w", err)
	}
	formatter, err := providers.Formatter(app.Config, client)
	if err != nil {
		return fmt.Errorf("failed to set up formatting: %w", err)
	}

	// input

	recordings, err := workdir.RecordingsDir()
	if err != nil {
		return fmt.Errorf("failed to determine recordings directory: %w", err)
	}

	dev := audio.NewDevice(audio.VoiceDeviceConfig(app.Config.SampleRate))
	capture, err := audio.NewCapture(dev, audio.CaptureConfig{
		Dir:     recordings,
		Encoder: audio.EncoderConfig{SampleRate: app.Config.SampleRate},
	}, audio.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to create audio capture: %w", err)
	}

	// events: one copy for the UI, one for the log

	uiC := make(chan scribe.Event, 16)
	logC := make(chan scribe.Event, 16)

	events := channels.NewBroadcaster[scribe.Event](channels.WithBuffer(32))
	if err := events.Subscribe(uiC); err != nil {
		return err
	}
	if err := events.Subscribe(logC); err != nil {
		return err
	}
	input, err := events.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to start event delivery: %w", err)
	}

	wg.Go(func() {
		logEvents(ctx, log, logC)
	})

	ctrl, err := scribe.NewController(scribe.ControllerConfig{
		Capture:        capture,
		Transcriber:    transcriber,
		Formatter:      formatter,
		Observer:       scribe.ChannelObserver(input),
		Logger:         log,
		KeepRecordings: c.KeepRecordings,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := ctrl.Close(context.Background()); err != nil {
			log.Error("failed to close controller", "error", err)
		}
	}()

	patientName, err := c.openContext(ctx, client, ctrl)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(tui.Config{
		Controller: ctrl,
		Events:     uiC,
		Samples: uictl.LevelsFunc[int16](func() []int16 {
			return capture.ReadSamples(waveSamples)
		}),
		Save:         saveFunc(client),
		PatientName:  patientName,
		PollInterval: app.Config.PollInterval,
		Context:      ctx,
		Cancel:       cancel,
	}), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	cancel()
	events.Wait()
	wg.Wait()

	for i, st := range events.Stats() {
		if st.Dropped > 0 {
			log.Debug("events dropped", "subscriber", i, "count", st.Dropped)
		}
	}

	fmt.Println("\nfinished. bye!")

	return nil
}

// openContext points the controller at the requested note or patient and
// returns the name shown in the header.
func (c *DictateCmd) openContext(ctx context.Context, client *api.Client, ctrl *scribe.Controller) (string, error) {
	switch {
	case c.Note != "":
		note, err := client.GetSoapNote(ctx, c.Note)
		if err != nil {
			return "", err
		}
		ctrl.LoadNote(ctx, noteFromAPI(note))
		if note.Patient != nil {
			return note.Patient.FullName(), nil
		}
		return note.PatientName, nil

	case c.Patient != "":
		patient, err := client.GetPatient(ctx, c.Patient)
		if err != nil {
			return "", err
		}
		ctrl.SelectPatient(ctx, patient.ID)
		return patient.FullName(), nil
	}

	return "", nil
}

// saveFunc creates the note on first save and updates it afterwards.
func saveFunc(client *api.Client) tui.SaveFunc {
	return func(ctx context.Context, note scribe.Note) (string, error) {
		var (
			saved *api.SoapNote
			err   error
		)
		if note.ID == "" {
			saved, err = client.CreateSoapNote(ctx, noteInput(note))
		} else {
			saved, err = client.UpdateSoapNote(ctx, note.ID, noteInput(note))
		}
		if err != nil {
			return "", err
		}

		return saved.ID, nil
	}
}

// logEvents records every notice the controller emits.
func logEvents(ctx context.Context, log *slog.Logger, eventC <-chan scribe.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-eventC:
			if e.Notice == nil {
				continue
			}
			attrs := []any{"kind", e.Notice.Kind, "status", e.State.Status.String()}
			if e.Notice.Label != "" {
				attrs = append(attrs, "section", e.Notice.Label)
			}
			if e.Notice.IsError() {
				log.Warn(e.Notice.Message, append(attrs, "error", e.Notice.Err)...)
				continue
			}
			log.Info(e.Notice.Message, attrs...)
		}
	}
}
