package aggregate

import "fmt"

// DuplicateDocumentError is returned when a document already contributes to the profile
type DuplicateDocumentError struct {
	DocumentID string
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("duplicate document: %s already contributes to the profile", e.DocumentID)
}

// DocumentNotFoundError is returned when forgetting a document that never contributed
type DocumentNotFoundError struct {
	DocumentID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document not found: %s", e.DocumentID)
}

// FusionError represents a failure while fusing a fingerprint into a profile
type FusionError struct {
	Message string
	Cause   error
}

func (e *FusionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fusion error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("fusion error: %s", e.Message)
}

func (e *FusionError) Unwrap() error {
	return e.Cause
}
