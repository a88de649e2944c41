package model

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExecRunner_CapturesStdout(t *testing.T) {
	runner, err := NewExecRunner([]string{"/bin/echo"})
	if err != nil {
		t.Fatalf("NewExecRunner() error = %v", err)
	}

	res, err := runner.Run(context.Background(), "hello prompt", 10*time.Second)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(res.Stdout, "hello prompt") {
		t.Errorf("Stdout = %q, want the prompt echoed back", res.Stdout)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
}

func TestExecRunner_NonZeroExitStillReturnsOutput(t *testing.T) {
	runner, err := NewExecRunner([]string{"/bin/sh", "-c", `echo '{"similarity_percentage": 10}'; exit 3`})
	if err != nil {
		t.Fatalf("NewExecRunner() error = %v", err)
	}

	res, err := runner.Run(context.Background(), "ignored", 10*time.Second)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil for non-zero exit", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Stdout, "similarity_percentage") {
		t.Errorf("Stdout = %q, want the payload preserved", res.Stdout)
	}
}

func TestExecRunner_SpawnError(t *testing.T) {
	runner, err := NewExecRunner([]string{"/nonexistent/model-binary"})
	if err != nil {
		t.Fatalf("NewExecRunner() error = %v", err)
	}

	_, err = runner.Run(context.Background(), "prompt", time.Second)
	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Errorf("Run() error = %v, want SpawnError", err)
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	runner, err := NewExecRunner([]string{"/bin/sleep", "30"})
	if err != nil {
		t.Fatalf("NewExecRunner() error = %v", err)
	}

	start := time.Now()
	_, err = runner.Run(context.Background(), "", 100*time.Millisecond)
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Run() error = %v, want TimeoutError", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Run() took %s, process was not killed promptly", elapsed)
	}
}

func TestExecRunner_Cancellation(t *testing.T) {
	runner, err := NewExecRunner([]string{"/bin/sleep", "30"})
	if err != nil {
		t.Fatalf("NewExecRunner() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err = runner.Run(ctx, "", 0)
	if err == nil {
		t.Fatal("Run() expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want wrapped context.Canceled", err)
	}
}

func TestNewExecRunner_EmptyCommand(t *testing.T) {
	if _, err := NewExecRunner(nil); err == nil {
		t.Error("NewExecRunner(nil) expected error")
	}
}
