package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/voice-fingerprint/internal/aggregate"
	"github.com/jonathan/voice-fingerprint/internal/fingerprint"
	"github.com/jonathan/voice-fingerprint/internal/jobs"
	"github.com/jonathan/voice-fingerprint/internal/segment"
	"github.com/jonathan/voice-fingerprint/internal/store"
	"github.com/jonathan/voice-fingerprint/internal/voice"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "text", Message: "is required"}
	assert.Equal(t, "validation error: text - is required", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestErrJobNotFound(t *testing.T) {
	err := &ErrJobNotFound{JobID: "abc"}
	assert.Equal(t, "job not found: abc", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"InvalidRequest", &voice.InvalidRequestError{Message: "user id is required"}, http.StatusBadRequest},
		{"UnsupportedInput", &segment.UnsupportedInputError{Message: "no words"}, http.StatusUnprocessableEntity},
		{"MinimumLength", &fingerprint.MinimumLengthError{Words: 50, Minimum: 100}, http.StatusUnprocessableEntity},
		{"Duplicate", &aggregate.DuplicateDocumentError{DocumentID: "d1"}, http.StatusConflict},
		{"ConcurrentUpdate", &voice.ConcurrentUpdateError{UserID: "u1", Attempts: 5}, http.StatusConflict},
		{"DocumentNotFound", &aggregate.DocumentNotFoundError{DocumentID: "d1"}, http.StatusNotFound},
		{"Wrapped", fmt.Errorf("forget: %w", &aggregate.DocumentNotFoundError{DocumentID: "d1"}), http.StatusNotFound},
		{"QueueFull", jobs.ErrQueueFull, http.StatusServiceUnavailable},
		{"Persistence", &store.PersistenceError{Message: "connection refused"}, http.StatusServiceUnavailable},
		{"Deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"Unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
