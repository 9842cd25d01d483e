package service

import "errors"

// ErrBaseDocument is returned when the base document cannot be loaded
var ErrBaseDocument = errors.New("base document unavailable")
