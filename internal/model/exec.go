package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// ExecRunner runs the model CLI as a local child process, one invocation per
// call. The prompt is appended as the final argv element, so no shell quoting
// is involved.
type ExecRunner struct {
	argv []string
}

// NewExecRunner creates a runner for the given command, e.g.
// ["ollama", "run", "mistral"].
func NewExecRunner(argv []string) (*ExecRunner, error) {
	if len(argv) == 0 {
		return nil, errors.New("model command must not be empty")
	}
	return &ExecRunner{argv: append([]string(nil), argv...)}, nil
}

// Run invokes the model and captures stdout. The process gets its own
// process group so that a timeout or cancellation kills the whole group and
// never leaves orphaned children behind.
func (r *ExecRunner) Run(ctx context.Context, prompt string, timeout time.Duration) (*Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	argv := append(append([]string(nil), r.argv...), prompt)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if err == syscall.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, &TimeoutError{Timeout: timeout}
		case ctx.Err() != nil:
			return nil, fmt.Errorf("model invocation cancelled: %w", ctx.Err())
		case errors.As(err, &exitErr):
			// The process ran; its stdout may still hold a usable payload.
			return &Result{Stdout: stdout.String(), ExitCode: exitErr.ExitCode()}, nil
		default:
			return nil, &SpawnError{Err: err}
		}
	}

	return &Result{Stdout: stdout.String()}, nil
}
