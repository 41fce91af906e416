package image

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// AuthError means no usable API key was found. It is raised before any
// request is sent.
type AuthError struct {
	Source string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reading API key from %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("API key is not set (%s)", e.Source)
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError is a non-2xx answer from the generation endpoint. Message is the
// upstream error message, or the raw body when it could not be parsed.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ideogram: HTTP %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("ideogram: HTTP %d: %s", e.Status, e.Message)
}

// IsRateLimit reports whether upstream throttled the request.
func (e *APIError) IsRateLimit() bool {
	return e.Status == http.StatusTooManyRequests
}

// ProtocolError is a 2xx response whose shape does not match the schema.
// Raw holds the body for debugging upstream drift.
type ProtocolError struct {
	Reason string
	Raw    []byte
}

func (e *ProtocolError) Error() string {
	return "unexpected response from ideogram: " + e.Reason
}

// FetchError is a failure to obtain the bytes of a single image.
type FetchError struct {
	Index int
	URL   string
	Err   error
}

func (e *FetchError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("image %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("image %d: fetching %s: %v", e.Index, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
