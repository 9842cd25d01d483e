package fill

import (
	"errors"
	"fmt"
)

var (
	// ErrFillFailed matches every ProcessError
	ErrFillFailed = errors.New("fill process failed")

	// ErrMissingInput is returned when the base document or data is empty
	ErrMissingInput = errors.New("missing PDF or JSON input")
)

// ProcessError reports a non-zero exit of the fill process
type ProcessError struct {
	ExitCode int
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("fill process exited with %d", e.ExitCode)
}

// Is makes errors.Is(err, ErrFillFailed) true for any ProcessError
func (e *ProcessError) Is(target error) bool {
	return target == ErrFillFailed
}
