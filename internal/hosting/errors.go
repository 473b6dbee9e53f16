package hosting

import "fmt"

// TransportError means the hosting API could not be reached or answered with
// something that is not a valid API response. Callers must not retry it within
// the same user interaction.
type TransportError struct {
	Op     string
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("hosting %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("hosting %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BusinessError is a failure the hosting API reported with ok=false, such as a
// name collision. Message is the server-provided text.
type BusinessError struct {
	Op      string
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("hosting %s rejected: %s", e.Op, e.Message)
}
