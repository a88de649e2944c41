package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"

	"forklens/internal/provider"
)

// pagePause is the delay between fork-list pages, to stay friendly with the
// API's secondary rate limits.
const pagePause = 700 * time.Millisecond

// GitHubProvider implements provider.Provider for GitHub.
type GitHubProvider struct {
	client *github.Client
	token  string
}

// Option configures the GitHub provider.
type Option func(*GitHubProvider)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(p *GitHubProvider) {
		p.client.BaseURL, _ = p.client.BaseURL.Parse(url + "/")
	}
}

// New creates a new GitHub provider.
func New(token string, opts ...Option) *GitHubProvider {
	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
	}
	client := github.NewClient(httpClient)

	p := &GitHubProvider{
		client: client,
		token:  token,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// tokenTransport adds authorization header to requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}

// Name returns the provider name.
func (p *GitHubProvider) Name() string {
	return "github"
}

// GetRepository fetches repository metadata.
func (p *GitHubProvider) GetRepository(ctx context.Context, owner, repo string) (*provider.Repository, error) {
	r, _, err := p.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("fetching repository: %w", mapNotFound(err))
	}

	return &provider.Repository{
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		URL:           r.GetHTMLURL(),
		DefaultBranch: r.GetDefaultBranch(),
		ForksCount:    r.GetForksCount(),
	}, nil
}

// ListForks lists up to max forks, paging 100 at a time until the API runs
// out of pages or the cap is reached.
func (p *GitHubProvider) ListForks(ctx context.Context, owner, repo string, max int) ([]provider.Fork, error) {
	var forks []provider.Fork
	opts := &github.RepositoryListForksOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		page, resp, err := p.client.Repositories.ListForks(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing forks: %w", mapNotFound(err))
		}
		for _, r := range page {
			forks = append(forks, provider.Fork{
				FullName:      r.GetFullName(),
				URL:           r.GetHTMLURL(),
				DefaultBranch: r.GetDefaultBranch(),
			})
			if len(forks) == max {
				return forks, nil
			}
		}
		if resp.NextPage == 0 {
			return forks, nil
		}
		opts.Page = resp.NextPage

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pagePause):
		}
	}
}

// ListFiles lists the entries at path within a repository tree.
func (p *GitHubProvider) ListFiles(ctx context.Context, fullName, path string) ([]provider.Entry, error) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}

	_, dir, _, err := p.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing contents of %s/%s: %w", fullName, path, mapNotFound(err))
	}
	if dir == nil {
		return nil, fmt.Errorf("path %s in %s is not a directory", path, fullName)
	}

	entries := make([]provider.Entry, len(dir))
	for i, item := range dir {
		entries[i] = provider.Entry{
			Name: item.GetName(),
			Path: item.GetPath(),
			Type: item.GetType(), // GitHub already uses "file"/"dir"
		}
	}
	return entries, nil
}

// GetFileContent returns the decoded content of a file.
func (p *GitHubProvider) GetFileContent(ctx context.Context, fullName, path string) (string, error) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return "", err
	}

	file, _, _, err := p.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return "", fmt.Errorf("fetching %s/%s: %w", fullName, path, mapNotFound(err))
	}
	if file == nil {
		return "", fmt.Errorf("path %s in %s is not a file", path, fullName)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding %s/%s: %w", fullName, path, err)
	}
	return content, nil
}

func splitFullName(fullName string) (owner, repo string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository name %q, want owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}

// mapNotFound converts GitHub 404 responses into the provider sentinel.
func mapNotFound(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return provider.ErrNotFound
	}
	return err
}
