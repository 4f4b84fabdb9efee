// Package apierrors defines the error taxonomy shared by the auth session, the Listonic client
// and the sync coordinator.
//
// Failures are classified into three categories that drive retry behavior:
//
//   - AuthError: credentials or refresh token rejected. Never retried automatically; the
//     account needs re-authentication.
//   - TransientError: network failure, timeout or 5xx. Retried on the next scheduled poll.
//   - RequestError: any other 4xx. Surfaced to the caller that issued the request.
package apierrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when a list or item id is not present in the local cache.
var ErrNotFound = errors.New("not found")

// AuthError indicates that the remote service rejected the credentials or refresh token
type AuthError struct {
	Message string
	Err     error
}

// Error returns the error message
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Unwrap returns the underlying error
func (e *AuthError) Unwrap() error {
	return e.Err
}

// TransientError indicates a failure that is expected to resolve on retry
type TransientError struct {
	Message string
	Err     error
}

// Error returns the error message
func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient failure: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("transient failure: %s", e.Message)
}

// Unwrap returns the underlying error
func (e *TransientError) Unwrap() error {
	return e.Err
}

// RequestError indicates that the remote service refused a request with a 4xx status other than 401
type RequestError struct {
	StatusCode int
	URL        string
	Message    string
	Err        error
}

// Error returns the error message
func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("invalid request: %s", e.Message)
	}
	return fmt.Sprintf("request rejected with HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// Unwrap returns the underlying error
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new AuthError
func NewAuthError(message string, err error) error {
	return &AuthError{Message: message, Err: err}
}

// NewTransientError creates a new TransientError
func NewTransientError(message string, err error) error {
	return &TransientError{Message: message, Err: err}
}

// NewInvalidRequest creates a RequestError for input rejected before any request is sent
func NewInvalidRequest(message string) error {
	return &RequestError{Message: message}
}

// FromStatus classifies a non-2xx HTTP status code
func FromStatus(statusCode int, url, message string) error {
	switch {
	case statusCode == http.StatusUnauthorized:
		return &AuthError{Message: fmt.Sprintf("HTTP %d for URL %s: %s", statusCode, url, message)}
	case statusCode >= http.StatusInternalServerError:
		return &TransientError{Message: fmt.Sprintf("HTTP %d for URL %s: %s", statusCode, url, message)}
	default:
		return &RequestError{StatusCode: statusCode, URL: url, Message: message}
	}
}

// FromTransport classifies an error returned before any HTTP status was received.
// Context cancellation by the caller is passed through untouched.
func FromTransport(message string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransientError{Message: message, Err: err}
}

// IsAuth reports whether err is or wraps an AuthError
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsTransient reports whether err is or wraps a TransientError
func IsTransient(err error) bool {
	var transientErr *TransientError
	return errors.As(err, &transientErr)
}

// IsRequest reports whether err is or wraps a RequestError
func IsRequest(err error) bool {
	var requestErr *RequestError
	return errors.As(err, &requestErr)
}
