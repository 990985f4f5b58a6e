package rewriting

import "fmt"

// NotReadyError is returned when the profile is not confident enough for the
// requested studio. Message is the readiness message shown to the user.
type NotReadyError struct {
	Message string
	Score   int
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("voice profile not ready: %s", e.Message)
}

// APICallError represents an error when calling the generator
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// LengthError is returned when every attempt drifted too far from the source length.
type LengthError struct {
	SourceWords    int
	RewrittenWords int
	Tolerance      float64
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("rewrite has %d words, source has %d (tolerance %.0f%%)",
		e.RewrittenWords, e.SourceWords, e.Tolerance*100)
}
