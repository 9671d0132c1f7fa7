package mefoundation

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for service calls
var (
	ErrTransport = errors.New("transport failure")
	ErrDecode    = errors.New("unexpected response body")
)

// maxErrorBody bounds how much of a rejected response ends up in error messages
const maxErrorBody = 256

// StatusError is returned when the service answers with a non-2xx status.
// It matches ErrTransport under errors.Is.
type StatusError struct {
	Code int
	Body string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("%s: HTTP %d %s", ErrTransport, e.Code, body)
}

// Is makes every status error an ErrTransport
func (e *StatusError) Is(target error) bool {
	return target == ErrTransport
}

// Temporary reports whether retrying elsewhere might help: throttling and server errors
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}
