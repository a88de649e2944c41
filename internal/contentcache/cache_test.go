package contentcache

import (
	"context"
	"fmt"
	"testing"

	"forklens/internal/provider"
)

// countingProvider serves canned content and counts fetches per key.
type countingProvider struct {
	calls map[string]int
}

func (f *countingProvider) Name() string { return "fake" }

func (f *countingProvider) GetRepository(ctx context.Context, owner, repo string) (*provider.Repository, error) {
	return nil, provider.ErrNotFound
}

func (f *countingProvider) ListForks(ctx context.Context, owner, repo string, max int) ([]provider.Fork, error) {
	return nil, nil
}

func (f *countingProvider) ListFiles(ctx context.Context, fullName, path string) ([]provider.Entry, error) {
	return nil, nil
}

func (f *countingProvider) GetFileContent(ctx context.Context, fullName, path string) (string, error) {
	key := fullName + "/" + path
	f.calls[key]++
	if path == "missing.go" {
		return "", provider.ErrNotFound
	}
	return fmt.Sprintf("content of %s", key), nil
}

func TestCache_SecondFetchIsCached(t *testing.T) {
	p := &countingProvider{calls: map[string]int{}}
	cache, err := New(p, 10)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	first, err := cache.GetFileContent(ctx, "owner/repo", "main.go")
	if err != nil {
		t.Fatalf("GetFileContent() error = %v", err)
	}
	second, err := cache.GetFileContent(ctx, "owner/repo", "main.go")
	if err != nil {
		t.Fatalf("GetFileContent() second call error = %v", err)
	}

	if first != second {
		t.Errorf("cached content differs: %q vs %q", first, second)
	}
	if got := p.calls["owner/repo/main.go"]; got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	p := &countingProvider{calls: map[string]int{}}
	cache, err := New(p, 10)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cache.GetFileContent(ctx, "owner/repo", "missing.go"); err == nil {
			t.Fatal("GetFileContent() expected error")
		}
	}
	if got := p.calls["owner/repo/missing.go"]; got != 2 {
		t.Errorf("provider called %d times, want 2 (errors must not be cached)", got)
	}
}

func TestCache_Eviction(t *testing.T) {
	p := &countingProvider{calls: map[string]int{}}
	cache, err := New(p, 1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	cache.GetFileContent(ctx, "owner/repo", "a.go")
	cache.GetFileContent(ctx, "owner/repo", "b.go") // evicts a.go
	cache.GetFileContent(ctx, "owner/repo", "a.go")

	if got := p.calls["owner/repo/a.go"]; got != 2 {
		t.Errorf("provider called %d times for a.go, want 2 after eviction", got)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}
