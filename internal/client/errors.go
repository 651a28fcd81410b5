package client

import (
	"fmt"
	"net/http"
)

// APIError is a structured rejection from the API, such as a validation failure.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// UserMessage is the API's own explanation, suitable for showing to the guest.
func (e *APIError) UserMessage() string {
	return e.Message
}

// TransportError means no usable answer came back: the API was unreachable,
// or it answered with a status and body the client could not interpret.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d %s: %v", e.Op, e.Status, http.StatusText(e.Status), e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
