package domain

import (
	"errors"
	"fmt"
)

// ErrStaleResult marks a fetch result that arrived after its selection was superseded.
// It is an expected outcome, not a failure.
var ErrStaleResult = errors.New("stale result discarded")

// ErrUnknownLocation is returned when a selection names a location the catalog does not know
var ErrUnknownLocation = errors.New("location not found in catalog")

// NetworkError reports a fetch that failed or timed out
type NetworkError struct {
	URL        string
	StatusCode int // Zero when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	if e.URL == "" {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError reports a response that is not valid JSON or lacks required fields
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorType classifies an error for logging
func ErrorType(err error) string {
	var netErr *NetworkError
	var parseErr *ParseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &netErr):
		return "network_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	case errors.Is(err, ErrStaleResult):
		return "stale_result"
	default:
		return "internal_error"
	}
}
