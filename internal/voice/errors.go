package voice

import (
	"errors"
	"fmt"

	"github.com/jonathan/voice-fingerprint/internal/aggregate"
	"github.com/jonathan/voice-fingerprint/internal/fingerprint"
	"github.com/jonathan/voice-fingerprint/internal/segment"
	"github.com/jonathan/voice-fingerprint/internal/store"
)

// ConcurrentUpdateError is returned when a profile update keeps losing the
// version race after every retry
type ConcurrentUpdateError struct {
	UserID   string
	Attempts int
	Cause    error
}

func (e *ConcurrentUpdateError) Error() string {
	return fmt.Sprintf("concurrent update: profile of user %s changed during %d attempts: %v", e.UserID, e.Attempts, e.Cause)
}

func (e *ConcurrentUpdateError) Unwrap() error {
	return e.Cause
}

// InvalidRequestError is returned when caller input fails validation
type InvalidRequestError struct {
	Message string
	Cause   error
}

func (e *InvalidRequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid request: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid request: %s", e.Message)
}

func (e *InvalidRequestError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err is transient, so that repeating the same
// update may succeed. Errors about the input itself never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var (
		unsupported *segment.UnsupportedInputError
		short       *fingerprint.MinimumLengthError
		duplicate   *aggregate.DuplicateDocumentError
		notFound    *aggregate.DocumentNotFoundError
		fusion      *aggregate.FusionError
		invalid     *InvalidRequestError
	)
	switch {
	case errors.As(err, &unsupported),
		errors.As(err, &short),
		errors.As(err, &duplicate),
		errors.As(err, &notFound),
		errors.As(err, &fusion),
		errors.As(err, &invalid):
		return false
	}
	var persistence *store.PersistenceError
	var concurrent *ConcurrentUpdateError
	return errors.As(err, &persistence) || errors.As(err, &concurrent)
}
