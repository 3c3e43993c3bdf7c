package main

import (
	"log"

	"github.com/alkime/scribe/internal/config"
	"github.com/alkime/scribe/internal/logger"
	"github.com/alkime/scribe/internal/providers"
	"github.com/alkime/scribe/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The gateway is the backend; it always talks to providers directly.
	if cfg.TranscriptionProvider == config.TranscriptionBackend {
		cfg.TranscriptionProvider = config.TranscriptionWhisper
	}
	if cfg.FormatterProvider == config.FormatterBackend {
		cfg.FormatterProvider = config.FormatterAnthropic
	}

	lg := logger.SetupLogger(cfg)
	lg.Info("Starting scribe gateway",
		"env", cfg.Env,
		"port", cfg.Port,
		"transcription", cfg.TranscriptionProvider,
		"formatter", cfg.FormatterProvider,
	)

	transcriber, err := providers.Transcriber(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to configure transcription: %v", err)
	}
	formatter, err := providers.Formatter(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to configure formatting: %v", err)
	}

	srv, err := server.New(cfg, lg, transcriber, formatter)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Run(srv); err != nil {
		lg.Error("Server stopped", "error", err)
		log.Fatalf("Fatal: %v", err)
	}
}
