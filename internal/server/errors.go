// Package server provides the HTTP REST API of the voice fingerprint engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/voice-fingerprint/internal/aggregate"
	"github.com/jonathan/voice-fingerprint/internal/fingerprint"
	"github.com/jonathan/voice-fingerprint/internal/jobs"
	"github.com/jonathan/voice-fingerprint/internal/segment"
	"github.com/jonathan/voice-fingerprint/internal/store"
	"github.com/jonathan/voice-fingerprint/internal/voice"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrJobNotFound indicates an unknown or expired background job
type ErrJobNotFound struct {
	JobID string
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("job not found: %s", e.JobID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		invalid     *voice.InvalidRequestError
		unsupported *segment.UnsupportedInputError
		short       *fingerprint.MinimumLengthError
		duplicate   *aggregate.DuplicateDocumentError
		notFound    *aggregate.DocumentNotFoundError
		jobNotFound *ErrJobNotFound
		concurrent  *voice.ConcurrentUpdateError
		conflict    *store.ConflictError
		persistence *store.PersistenceError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &unsupported), errors.As(err, &short):
		return http.StatusUnprocessableEntity
	case errors.As(err, &duplicate), errors.As(err, &concurrent), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notFound), errors.As(err, &jobNotFound):
		return http.StatusNotFound
	case errors.Is(err, jobs.ErrQueueFull), errors.Is(err, jobs.ErrQueueClosed), errors.As(err, &persistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
