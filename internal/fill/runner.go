package fill

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// Runner starts a process and waits for it to exit.
// A process that ran and exited non-zero is reported through exitCode with a
// nil error; err is reserved for failures to start or wait.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (exitCode int, err error)
}

// ExecRunner runs processes with os/exec
type ExecRunner struct {
	// Dir is the working directory; empty means the caller's
	Dir string
}

// Run implements Runner
func (r ExecRunner) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return exitErr.ExitCode(), nil
	}
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	return -1, err
}
