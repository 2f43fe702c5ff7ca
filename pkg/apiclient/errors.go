package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FallbackMessage is used when a failed response carries no message.
const FallbackMessage = "An unexpected error occurred."

// TransportError means no response was received: the server was unreachable,
// the request timed out or the context ended.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport error: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request gave up waiting for a response.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// APIError means the server answered with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// IsUnauthorized reports a server rejection of the credential.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

// IsRetryable reports failures worth another attempt: lost connections,
// timeouts and 5xx answers. Cancellation and 4xx answers are final.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return IsTransport(err)
}

// Message returns the text to show an operator for err.
func Message(err error) string {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Message
	}
	if IsTransport(err) {
		return "Unable to reach the server. Check your connection and try again."
	}
	return FallbackMessage
}
