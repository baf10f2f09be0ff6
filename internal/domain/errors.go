package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential    = errors.New("missing credential")
	ErrInvalidFileType      = errors.New("invalid file type")
	ErrFileRead             = errors.New("file read error")
	ErrNoImageSelected      = errors.New("no image selected")
	ErrGenerationFailed     = errors.New("generation failed")
	ErrEmptyResult          = errors.New("empty result")
	ErrDownload             = errors.New("download error")
	ErrUnexpected           = errors.New("unexpected error")
	ErrGenerationInProgress = errors.New("generation in progress")
	ErrPollLimit            = errors.New("poll limit reached")
	ErrIllegalTransition    = errors.New("illegal state transition")
)

// GenerationError carries the message reported by the video service.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return ErrGenerationFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrGenerationFailed, e.Message)
}

func (e *GenerationError) Unwrap() error { return ErrGenerationFailed }

// DownloadError carries the transport status text of a failed retrieval.
type DownloadError struct {
	StatusCode int
	Status     string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDownload, e.Status)
}

func (e *DownloadError) Unwrap() error { return ErrDownload }
