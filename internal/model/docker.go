package model

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"forklens/internal/docker"
)

// DockerRunner runs each model invocation in a one-shot container. Useful
// when the model CLI is not installed on the host, or to isolate it.
type DockerRunner struct {
	client *docker.Client
	image  string
	argv   []string
	seq    atomic.Uint64
}

// NewDockerRunner creates a runner that executes the given command inside
// containers of the given image. The image is pulled up front so the first
// comparison doesn't pay for it.
func NewDockerRunner(ctx context.Context, image string, argv []string) (*DockerRunner, error) {
	if image == "" {
		return nil, fmt.Errorf("model image must not be empty")
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("model command must not be empty")
	}

	client, err := docker.NewClient()
	if err != nil {
		return nil, &SpawnError{Err: err}
	}
	if err := client.PullImage(ctx, image); err != nil {
		client.Close()
		return nil, &SpawnError{Err: err}
	}

	return &DockerRunner{
		client: client,
		image:  image,
		argv:   append([]string(nil), argv...),
	}, nil
}

// Close releases the underlying Docker client.
func (r *DockerRunner) Close() error {
	return r.client.Close()
}

// Run invokes the model in a fresh container and captures its stdout. On
// timeout or cancellation the container is force-removed, which kills the
// model process; the container's exit code is reported like a local exit
// code, and a non-zero code is not a failure by itself.
func (r *DockerRunner) Run(ctx context.Context, prompt string, timeout time.Duration) (*Result, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	name := fmt.Sprintf("forklens-model-%d-%d", time.Now().Unix(), r.seq.Add(1))
	id, err := r.client.CreateContainer(runCtx, docker.RunConfig{
		Name:  name,
		Image: r.image,
		Cmd:   append(append([]string(nil), r.argv...), prompt),
		Labels: map[string]string{
			"forklens.model": "true",
		},
	})
	if err != nil {
		return nil, &SpawnError{Err: err}
	}
	// Cleanup runs on the background context so it still happens after a
	// timeout; force removal kills a still-running model process.
	defer r.client.RemoveContainer(context.Background(), id, true)

	if err := r.client.StartContainer(runCtx, id); err != nil {
		return nil, &SpawnError{Err: err}
	}

	exitCode, err := r.client.WaitContainer(runCtx, id)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{Timeout: timeout}
		}
		if runCtx.Err() != nil {
			return nil, fmt.Errorf("model invocation cancelled: %w", runCtx.Err())
		}
		return nil, fmt.Errorf("waiting for model container: %w", err)
	}

	stdout, err := r.client.ContainerStdout(context.Background(), id)
	if err != nil {
		return nil, fmt.Errorf("reading model output: %w", err)
	}

	return &Result{Stdout: stdout, ExitCode: int(exitCode)}, nil
}
