package gitlab

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xanzy/go-gitlab"

	"forklens/internal/provider"
)

// GitLabProvider implements provider.Provider for GitLab.
type GitLabProvider struct {
	client *gitlab.Client
	token  string
}

// Option configures the GitLab provider.
type Option func(*GitLabProvider)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(baseURL string) Option {
	return func(p *GitLabProvider) {
		p.client, _ = gitlab.NewClient(p.token, gitlab.WithBaseURL(baseURL+"/api/v4"))
	}
}

// New creates a new GitLab provider.
func New(token string, opts ...Option) *GitLabProvider {
	client, _ := gitlab.NewClient(token)
	p := &GitLabProvider{client: client, token: token}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the provider name.
func (p *GitLabProvider) Name() string {
	return "gitlab"
}

// GetRepository fetches project metadata.
func (p *GitLabProvider) GetRepository(ctx context.Context, owner, repo string) (*provider.Repository, error) {
	project, resp, err := p.client.Projects.GetProject(owner+"/"+repo, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching project: %w", mapNotFound(resp, err))
	}

	return &provider.Repository{
		Name:          project.Name,
		FullName:      project.PathWithNamespace,
		Description:   project.Description,
		URL:           project.WebURL,
		DefaultBranch: project.DefaultBranch,
		ForksCount:    project.ForksCount,
	}, nil
}

// ListForks lists up to max forks of a project, 100 per page.
func (p *GitLabProvider) ListForks(ctx context.Context, owner, repo string, max int) ([]provider.Fork, error) {
	var forks []provider.Fork
	opts := &gitlab.ListProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}

	for {
		page, resp, err := p.client.Projects.ListProjectForks(owner+"/"+repo, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing forks: %w", mapNotFound(resp, err))
		}
		for _, project := range page {
			forks = append(forks, provider.Fork{
				FullName:      project.PathWithNamespace,
				URL:           project.WebURL,
				DefaultBranch: project.DefaultBranch,
			})
			if len(forks) == max {
				return forks, nil
			}
		}
		if resp.NextPage == 0 {
			return forks, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListFiles lists the tree entries at path within a project.
func (p *GitLabProvider) ListFiles(ctx context.Context, fullName, path string) ([]provider.Entry, error) {
	opts := &gitlab.ListTreeOptions{}
	if path != "" {
		opts.Path = gitlab.Ptr(path)
	}

	nodes, resp, err := p.client.Repositories.ListTree(fullName, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing tree of %s/%s: %w", fullName, path, mapNotFound(resp, err))
	}

	entries := make([]provider.Entry, len(nodes))
	for i, node := range nodes {
		entryType := provider.EntryTypeFile
		if node.Type == "tree" {
			entryType = provider.EntryTypeDir
		}
		entries[i] = provider.Entry{
			Name: node.Name,
			Path: node.Path,
			Type: entryType,
		}
	}
	return entries, nil
}

// GetFileContent returns the raw content of a file at the project's HEAD.
func (p *GitLabProvider) GetFileContent(ctx context.Context, fullName, path string) (string, error) {
	data, resp, err := p.client.RepositoryFiles.GetRawFile(fullName, path, &gitlab.GetRawFileOptions{
		Ref: gitlab.Ptr("HEAD"),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("fetching %s/%s: %w", fullName, path, mapNotFound(resp, err))
	}
	return string(data), nil
}

// mapNotFound converts GitLab 404 responses into the provider sentinel.
func mapNotFound(resp *gitlab.Response, err error) error {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return provider.ErrNotFound
	}
	return err
}
