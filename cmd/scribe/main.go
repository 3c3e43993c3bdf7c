package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/config"
	"github.com/alkime/scribe/internal/keyring"
)

// CLI defines the scribe command structure.
type CLI struct {
	// Default command
	Dictate DictateCmd `cmd:"" default:"withargs" help:"Open the note editor and dictate into sections"`

	Transcribe TranscribeCmd `cmd:"" help:"Transcribe an audio file"`
	Format     FormatCmd     `cmd:"" help:"Format section text with the LLM"`
	Devices    DevicesCmd    `cmd:"" help:"List available audio devices"`

	Login          LoginCmd          `cmd:"" help:"Sign in to the backend"`
	Logout         LogoutCmd         `cmd:"" help:"Forget the stored session"`
	Register       RegisterCmd       `cmd:"" help:"Create a clinician account"`
	ForgotPassword ForgotPasswordCmd `cmd:"" name:"forgot-password" help:"Request a password reset email"`
	ResetPassword  ResetPasswordCmd  `cmd:"" name:"reset-password" help:"Set a new password with a reset token"`

	Patients PatientsCmd `cmd:"" help:"Look up patients"`
	Notes    NotesCmd    `cmd:"" help:"Manage SOAP notes"`
	Icd      IcdCmd      `cmd:"" name:"icd" help:"Look up ICD-10 codes"`
	Config   ConfigCmd   `cmd:"" help:"Manage configuration"`
}

// App carries what every command needs. It is bound into kong so Run
// methods can take it as a parameter.
type App struct {
	Config *config.Config
	Client *api.Client
	Logger *slog.Logger
}

func newApp(cfg *config.Config, logger *slog.Logger) *App {
	client := api.New(cfg.APIURL, keyring.Credentials{},
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
	)

	return &App{Config: cfg, Client: client, Logger: logger}
}

func main() {
	// CLI output goes to stderr as text; the editor swaps in a file logger.
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("scribe"),
		kong.Description("Dictate clinical SOAP notes section by section."),
		kong.UsageOnError(),
	)

	cfg, err := config.LoadConfig()
	ctx.FatalIfErrorf(err)

	err = ctx.Run(newApp(cfg, logger))
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
