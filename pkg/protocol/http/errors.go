package http

import (
	"errors"
	"fmt"
)

// ErrCanceled is returned by Stream when the context is done before the
// transfer finished. It is never wrapped in an HTTPError.
var ErrCanceled = errors.New("transfer canceled")

type ErrorType int

const (
	ErrorTypeNetwork ErrorType = iota
	ErrorTypeHTTP
	ErrorTypeValidation
	ErrorTypeTimeout
	ErrorTypeIO
)

type HTTPError struct {
	Type      ErrorType
	Operation string
	URL       string
	Status    int
	Err       error
}

func (e *HTTPError) Error() string {
	switch e.Type {
	case ErrorTypeHTTP:
		return fmt.Sprintf("HTTP error during %s for %s: status %d: %v",
			e.Operation, e.URL, e.Status, e.Err)
	case ErrorTypeNetwork:
		return fmt.Sprintf("network error during %s for %s: %v",
			e.Operation, e.URL, e.Err)
	case ErrorTypeTimeout:
		return fmt.Sprintf("timeout during %s for %s: %v",
			e.Operation, e.URL, e.Err)
	case ErrorTypeValidation:
		return fmt.Sprintf("invalid request %s for %s: %v",
			e.Operation, e.URL, e.Err)
	case ErrorTypeIO:
		return fmt.Sprintf("local I/O error during %s for %s: %v",
			e.Operation, e.URL, e.Err)
	default:
		return fmt.Sprintf("error during %s for %s: %v",
			e.Operation, e.URL, e.Err)
	}
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPNetworkError(op, url string, err error) *HTTPError {
	return &HTTPError{Type: ErrorTypeNetwork, Operation: op, URL: url, Err: err}
}

func NewHTTPStatusError(op, url string, status int, err error) *HTTPError {
	return &HTTPError{Type: ErrorTypeHTTP, Operation: op, URL: url, Status: status, Err: err}
}

func NewHTTPValidationError(op, url string, err error) *HTTPError {
	return &HTTPError{Type: ErrorTypeValidation, Operation: op, URL: url, Err: err}
}

func NewHTTPTimeoutError(op, url string, err error) *HTTPError {
	return &HTTPError{Type: ErrorTypeTimeout, Operation: op, URL: url, Err: err}
}

func NewHTTPIOError(op, url string, err error) *HTTPError {
	return &HTTPError{Type: ErrorTypeIO, Operation: op, URL: url, Err: err}
}
