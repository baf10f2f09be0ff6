package animate

import (
	"context"
	"errors"
	"strings"

	"animator/internal/domain"
	"animator/internal/i18n"
)

// Message maps an error from the taxonomy to its localized banner text.
// Anything unclassified becomes the generic unexpected-error message.
func Message(err error) string {
	var genErr *domain.GenerationError
	var dlErr *domain.DownloadError
	switch {
	case err == nil, errors.Is(err, ErrSessionReset):
		return ""
	case errors.As(err, &genErr):
		if msg := strings.TrimSpace(genErr.Message); msg != "" {
			return msg
		}
		return i18n.T(i18n.KeyGenerationUnknown)
	case errors.As(err, &dlErr):
		return i18n.T(i18n.KeyDownloadFailed, dlErr.Status)
	case errors.Is(err, domain.ErrMissingCredential):
		return i18n.T(i18n.KeySetupError)
	case errors.Is(err, domain.ErrInvalidFileType):
		return i18n.T(i18n.KeyInvalidFileType)
	case errors.Is(err, domain.ErrFileRead):
		return i18n.T(i18n.KeyFileReadError)
	case errors.Is(err, domain.ErrNoImageSelected):
		return i18n.T(i18n.KeyNoImageSelected)
	case errors.Is(err, domain.ErrGenerationFailed):
		return i18n.T(i18n.KeyGenerationUnknown)
	case errors.Is(err, domain.ErrEmptyResult):
		return i18n.T(i18n.KeyEmptyResult)
	case errors.Is(err, domain.ErrGenerationInProgress):
		return i18n.T(i18n.KeyInProgress)
	case errors.Is(err, domain.ErrPollLimit):
		return i18n.T(i18n.KeyPollLimit)
	default:
		return i18n.T(i18n.KeyUnexpected)
	}
}

// outcome is the metrics label for a finished generation.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrGenerationFailed):
		return "generation_failed"
	case errors.Is(err, domain.ErrEmptyResult):
		return "empty_result"
	case errors.Is(err, domain.ErrDownload):
		return "download_error"
	case errors.Is(err, domain.ErrPollLimit):
		return "poll_limit"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unexpected"
	}
}
