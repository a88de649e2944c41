package provider

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a repository, path or file does not exist on
// the remote.
var ErrNotFound = errors.New("not found")

// Provider defines the narrow interface the scanner needs from a git host.
type Provider interface {
	// Name returns the provider name (github, gitlab).
	Name() string

	// GetRepository fetches repository metadata.
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)

	// ListForks lists up to max forks of a repository.
	ListForks(ctx context.Context, owner, repo string, max int) ([]Fork, error)

	// ListFiles lists the entries at path within a repository tree.
	// An empty path means the repository root.
	ListFiles(ctx context.Context, fullName, path string) ([]Entry, error)

	// GetFileContent returns the decoded content of a file.
	GetFileContent(ctx context.Context, fullName, path string) (string, error)
}
