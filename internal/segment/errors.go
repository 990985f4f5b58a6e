package segment

import "fmt"

// UnsupportedInputError reports input from which no sentence could be derived
type UnsupportedInputError struct {
	Message string
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("unsupported input: %s", e.Message)
}
