package scribe

import "errors"

var (
	ErrUnknownSection          = errors.New("unknown section")
	ErrBlankSection            = errors.New("section is empty")
	ErrSectionRecording        = errors.New("section is being recorded")
	ErrSectionFormatting       = errors.New("section is already being formatted")
	ErrTranscriptionInProgress = errors.New("a transcription is in progress")
	ErrNotRecording            = errors.New("not recording")
	ErrSessionBusy             = errors.New("a recording is already in progress")
	ErrNothingToFormat         = errors.New("no section has text to format")
	ErrFormatAllInProgress     = errors.New("format all is already running")
	ErrNothingToRetry          = errors.New("no failed transcription to retry")
	ErrInvalidIcd10            = errors.New("invalid ICD-10 selection")
	ErrContextReset            = errors.New("note changed; result discarded")
	ErrNoPatient               = errors.New("no patient selected")
	ErrEmptyNote               = errors.New("note has no content")
	ErrClosed                  = errors.New("controller is closed")
	ErrSectionChanged          = errors.New("section changed while editing")
)
