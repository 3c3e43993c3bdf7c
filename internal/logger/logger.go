package logger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alkime/scribe/internal/config"
)

func level(cfg *config.Config) slog.Level {
	logLevel := slog.LevelInfo
	if cfg.Env == config.EnvDevelopment {
		logLevel = slog.LevelDebug
	}
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}

	return logLevel
}

// SetupLogger configures structured JSON logging on stdout and installs it
// as the default logger.
func SetupLogger(cfg *config.Config) *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level(cfg),
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// SetupFileLogger routes text logs to path. The terminal UI owns stdout, so
// interactive sessions log here instead. The returned func closes the file.
func SetupFileLogger(cfg *config.Config, path string) (*slog.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: level(cfg),
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, f.Close, nil
}
