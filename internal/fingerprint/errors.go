package fingerprint

import "fmt"

// MinimumLengthError is returned when a text has fewer words than the extraction floor
type MinimumLengthError struct {
	Words   int
	Minimum int
}

func (e *MinimumLengthError) Error() string {
	return fmt.Sprintf("minimum length error: text has %d words, at least %d required", e.Words, e.Minimum)
}
