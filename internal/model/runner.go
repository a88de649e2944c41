package model

import (
	"context"
	"fmt"
	"time"
)

// Result is the raw outcome of one model invocation. A non-zero exit code is
// not a failure by itself: local model CLIs sometimes exit non-zero after
// emitting usable output, so the caller gets whatever reached stdout.
type Result struct {
	Stdout   string
	ExitCode int
}

// Runner invokes the model once with a composed prompt. A timeout of zero
// means no deadline beyond whatever the context carries.
type Runner interface {
	Run(ctx context.Context, prompt string, timeout time.Duration) (*Result, error)
}

// SpawnError reports that the model process could not be started at all,
// which almost always means an environment problem (binary not installed,
// image missing, daemon unreachable).
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting model process: %v", e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// TimeoutError reports that the invocation exceeded its deadline and the
// process was killed.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Timeout <= 0 {
		return "model invocation cancelled"
	}
	return fmt.Sprintf("model invocation exceeded %s deadline", e.Timeout)
}
