package store

import "fmt"

// ConflictError is returned when a commit's expected version is stale
type ConflictError struct {
	UserID          string
	ExpectedVersion int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: profile of user %s is no longer at version %d", e.UserID, e.ExpectedVersion)
}

// PersistenceError represents a failure of the underlying storage backend
type PersistenceError struct {
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persistence error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("persistence error: %s", e.Message)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
