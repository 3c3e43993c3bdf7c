package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/formatting"
	"github.com/alkime/scribe/internal/scribe"
	"github.com/alkime/scribe/internal/transcription"
	"github.com/gin-gonic/gin"
)

// Audio containers accepted by the transcription endpoint.
var audioFormats = map[string]bool{
	"mp3": true, "m4a": true, "mp4": true, "wav": true, "webm": true, "ogg": true,
}

func abortMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func (s *Server) handleTranscribe(c *gin.Context) {
	var req transcription.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	format := strings.ToLower(strings.TrimPrefix(req.Format, "."))
	if format == "" {
		format = "mp3"
	}
	if !audioFormats[format] {
		abortMessage(c, http.StatusBadRequest, fmt.Sprintf("unsupported audio format %q", format))
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		abortMessage(c, http.StatusBadRequest, "audioBase64 is not valid base64")
		return
	}
	if len(data) == 0 {
		s.metrics.transcriptions.WithLabelValues("empty_audio").Inc()
		abortMessage(c, http.StatusBadRequest, transcription.ErrEmptyAudio.Error())
		return
	}
	s.metrics.audioBytes.Observe(float64(len(data)))

	artifact, cleanup, err := spool(data, format)
	if err != nil {
		s.logger.Error("failed to spool audio", "error", err)
		abortMessage(c, http.StatusInternalServerError, "failed to store audio")
		return
	}
	defer cleanup()

	text, err := s.transcriber.Transcribe(c.Request.Context(), artifact)
	switch {
	case errors.Is(err, transcription.ErrNoSpeechDetected):
		s.metrics.transcriptions.WithLabelValues("no_speech").Inc()
		c.JSON(http.StatusOK, transcription.Response{Text: ""})
	case errors.Is(err, transcription.ErrRejected):
		s.metrics.transcriptions.WithLabelValues("rejected").Inc()
		s.logger.Warn("transcription rejected", "platform", req.Platform, "error", err)
		abortMessage(c, http.StatusUnprocessableEntity, "audio rejected by transcription service")
	case err != nil:
		s.metrics.transcriptions.WithLabelValues("error").Inc()
		s.logger.Warn("transcription failed", "platform", req.Platform, "error", err)
		abortMessage(c, http.StatusBadGateway, "transcription service unavailable")
	default:
		s.metrics.transcriptions.WithLabelValues("ok").Inc()
		s.logger.Debug("transcribed audio", "platform", req.Platform, "bytes", len(data), "chars", len(text))
		c.JSON(http.StatusOK, transcription.Response{Text: text})
	}
}

// spool writes uploaded audio to a temp file named with its container
// extension, which speech-to-text providers use to detect the format.
func spool(data []byte, format string) (audio.Artifact, func(), error) {
	f, err := os.CreateTemp("", "scribe-upload-*."+format)
	if err != nil {
		return audio.Artifact{}, nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return audio.Artifact{}, nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return audio.Artifact{}, nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	artifact, err := audio.ArtifactFromFile(f.Name())
	if err != nil {
		cleanup()
		return audio.Artifact{}, nil, err
	}

	return artifact, cleanup, nil
}

func (s *Server) handleFormat(c *gin.Context) {
	var req formatting.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	label, err := scribe.ParseLabel(req.SectionLabel)
	if err != nil {
		abortMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		abortMessage(c, http.StatusBadRequest, formatting.ErrBlankInput.Error())
		return
	}

	formatted, err := s.formatter.Format(c.Request.Context(), string(label), req.RawText)
	if err != nil {
		s.metrics.formats.WithLabelValues(string(label), "error").Inc()
		s.logger.Warn("formatting failed", "section", label, "error", err)
		abortMessage(c, http.StatusBadGateway, "formatting service unavailable")
		return
	}

	s.metrics.formats.WithLabelValues(string(label), "ok").Inc()
	c.String(http.StatusOK, formatted)
}
