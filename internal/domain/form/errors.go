package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSchema is returned when the wizard definition breaks an invariant
	ErrInvalidSchema = errors.New("invalid form schema")
)

// ImportParseError is returned when an imported state document cannot be read.
// The caller's existing state must be left as it was.
type ImportParseError struct {
	Err error
}

func (e *ImportParseError) Error() string {
	return fmt.Sprintf("failed to parse imported form state: %v", e.Err)
}

func (e *ImportParseError) Unwrap() error {
	return e.Err
}

// FieldProblem describes why a single field value was rejected
type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every rejected field of a state
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+": "+p.Message)
	}
	return "form validation failed: " + strings.Join(parts, "; ")
}
