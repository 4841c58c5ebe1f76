package model

import "fmt"

// TransportError covers connection failures and timeouts. Recoverable: the
// user retries the same action, nothing in the conversation is corrupted.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx reply from the model endpoint, kept with status and
// body for display.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("model endpoint: status %d: %s", e.Status, e.Body)
}
