package esign

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPackageID is returned when a signing URL is requested without an ID
	ErrMissingPackageID = errors.New("package id is required")

	// ErrMalformedResponse is returned when the provider answers with a body that is not JSON
	ErrMalformedResponse = errors.New("malformed provider response")
)

// SubmissionError reports a failed package creation. StatusCode is zero when
// the request never got a response.
type SubmissionError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("package creation failed: %v", e.Err)
	}
	return fmt.Sprintf("package creation failed with status %d: %s", e.StatusCode, truncate(e.Body))
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// SigningURLError reports a failed signing URL lookup
type SigningURLError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *SigningURLError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("signing url request failed: %v", e.Err)
	}
	return fmt.Sprintf("signing url request failed with status %d: %s", e.StatusCode, truncate(e.Body))
}

func (e *SigningURLError) Unwrap() error {
	return e.Err
}

func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
