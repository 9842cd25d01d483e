package storage

import "errors"

var (
	// ErrPathEscapesBase is returned when a path resolves outside the store's directory
	ErrPathEscapesBase = errors.New("path escapes base directory")

	// ErrEmptyRequestID is returned when a scratch folder is requested without an ID
	ErrEmptyRequestID = errors.New("empty request ID")
)
