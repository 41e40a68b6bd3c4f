package feed

import (
	"fmt"
)

// FetchError is returned when a feed could not be retrieved after all
// attempts, or on a non-retryable failure.
type FetchError struct {
	URL        string
	Attempts   int
	StatusCode int // 0 when the failure happened below HTTP
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s after %d attempt(s): HTTP %d: %v", e.URL, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a document is not a usable feed.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("failed to parse feed %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to parse feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
