package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBusy               = errors.New("request already in flight")
	ErrNoSession          = errors.New("not signed in")
	ErrMissingSketch      = errors.New("sketch is required")
	ErrMissingDescription = errors.New("description is required")
	ErrNoResult           = errors.New("no generated image")
	ErrInvalidDataURL     = errors.New("invalid data url")
)

// ValidationError reports missing input. No network call was made.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

// AuthenticationError is a non-2xx answer from an auth endpoint. Message is
// the backend's "detail" or a generic text; Detail is any body text, for logs.
type AuthenticationError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *AuthenticationError) Error() string { return e.Message }

// HTTPError is a non-2xx answer from the generation or chat endpoints.
// The message keeps the status code in the text so callers matching on
// substrings see it. Detail is whatever the backend said, for logs.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// ResponseShapeError is a 2xx answer missing the fields we need.
type ResponseShapeError struct {
	Message string
}

func (e *ResponseShapeError) Error() string { return e.Message }

// NetworkError means the request never completed.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }
