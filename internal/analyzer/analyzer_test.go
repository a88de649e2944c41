package analyzer

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"forklens/internal/llm"
	"forklens/internal/model"
)

// fakeRunner returns canned output and records the prompts it received.
type fakeRunner struct {
	stdout   string
	exitCode int
	err      error
	prompts  []string
}

func (f *fakeRunner) Run(ctx context.Context, prompt string, timeout time.Duration) (*model.Result, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Result{Stdout: f.stdout, ExitCode: f.exitCode}, nil
}

func TestAnalyzer_Compare(t *testing.T) {
	runner := &fakeRunner{
		stdout: `Sure! {"similarity_percentage": 85, "refactoring_level": "low", "added_features": true, "removed_features": false, "notes": "minor rename"}`,
	}
	a := New(runner, Config{}, nil)

	got := a.Compare(context.Background(), "package a", "package b")
	if got.SimilarityPercentage != 85 {
		t.Errorf("SimilarityPercentage = %d, want 85", got.SimilarityPercentage)
	}
	if got.RefactoringLevel != llm.RefactoringLow {
		t.Errorf("RefactoringLevel = %q, want low", got.RefactoringLevel)
	}
	if got.QualityIssues == nil || len(got.QualityIssues) != 0 {
		t.Errorf("QualityIssues = %v, want default-filled empty slice", got.QualityIssues)
	}

	if len(runner.prompts) != 1 {
		t.Fatalf("runner invoked %d times, want 1", len(runner.prompts))
	}
	if !strings.Contains(runner.prompts[0], "package a") || !strings.Contains(runner.prompts[0], "package b") {
		t.Error("prompt should embed both file contents")
	}
}

func TestAnalyzer_Compare_TimeoutBecomesFailureRecord(t *testing.T) {
	runner := &fakeRunner{err: &model.TimeoutError{Timeout: 120 * time.Second}}
	a := New(runner, Config{}, nil)

	got := a.Compare(context.Background(), "a", "b")
	if got.RefactoringLevel != llm.RefactoringUnknown {
		t.Errorf("RefactoringLevel = %q, want unknown", got.RefactoringLevel)
	}
	if got.SimilarityPercentage != 0 {
		t.Errorf("SimilarityPercentage = %d, want 0", got.SimilarityPercentage)
	}
	if !strings.HasPrefix(got.Notes, "Error in analysis: ") {
		t.Errorf("Notes = %q, want error prefix", got.Notes)
	}
}

func TestAnalyzer_Compare_NoPayloadBecomesFailureRecord(t *testing.T) {
	runner := &fakeRunner{stdout: "I couldn't compare these files, sorry."}
	a := New(runner, Config{}, nil)

	got := a.Compare(context.Background(), "a", "b")
	if got.RefactoringLevel != llm.RefactoringUnknown {
		t.Errorf("RefactoringLevel = %q, want unknown", got.RefactoringLevel)
	}
	if got.QualityIssues == nil {
		t.Error("failure record must carry an empty issues slice, not nil")
	}
}

func TestAnalyzer_Compare_GarbagePayloadBecomesFailureRecord(t *testing.T) {
	runner := &fakeRunner{stdout: "here you go { this is not json }"}
	a := New(runner, Config{}, nil)

	got := a.Compare(context.Background(), "a", "b")
	if got.RefactoringLevel != llm.RefactoringUnknown {
		t.Errorf("RefactoringLevel = %q, want unknown", got.RefactoringLevel)
	}
}

func TestAnalyzer_Compare_NonZeroExitStillParsed(t *testing.T) {
	runner := &fakeRunner{
		stdout:   `{"similarity_percentage": 40, "refactoring_level": "high"}`,
		exitCode: 1,
	}
	a := New(runner, Config{}, nil)

	got := a.Compare(context.Background(), "a", "b")
	if got.SimilarityPercentage != 40 {
		t.Errorf("SimilarityPercentage = %d, want 40 despite exit code 1", got.SimilarityPercentage)
	}
}

func TestAnalyzer_Compare_Idempotent(t *testing.T) {
	runner := &fakeRunner{
		stdout: `{"similarity_percentage": 70, "refactoring_level": "medium", "notes": "restructured"}`,
	}
	a := New(runner, Config{}, nil)

	first := a.Compare(context.Background(), "a", "b")
	second := a.Compare(context.Background(), "a", "b")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compare() not idempotent: %+v vs %+v", first, second)
	}
}

func TestAnalyzer_Compare_TruncatesInputs(t *testing.T) {
	runner := &fakeRunner{stdout: `{}`}
	a := New(runner, Config{TruncateLimit: 100}, nil)

	long := strings.Repeat("x", 5000)
	a.Compare(context.Background(), long, long)

	if len(runner.prompts[0]) > 1000 {
		t.Errorf("prompt length = %d, inputs were not truncated", len(runner.prompts[0]))
	}
}

func TestAnalyzer_AnalyzeQuality(t *testing.T) {
	runner := &fakeRunner{
		stdout: `Findings below. {"issues": [{"type": "hidden_bug", "severity": "medium", "description": "off by one", "recommendation": "fix bounds", "tool_missed": true}]}`,
	}
	a := New(runner, Config{}, nil)

	got := a.AnalyzeQuality(context.Background(), "some code")
	if len(got.Issues) != 1 {
		t.Fatalf("len(Issues) = %d, want 1", len(got.Issues))
	}
	if got.Issues[0].Type != "hidden_bug" {
		t.Errorf("Issues[0].Type = %q", got.Issues[0].Type)
	}
}

func TestAnalyzer_AnalyzeQuality_FailureYieldsEmptyReport(t *testing.T) {
	runner := &fakeRunner{err: &model.SpawnError{Err: context.DeadlineExceeded}}
	a := New(runner, Config{}, nil)

	got := a.AnalyzeQuality(context.Background(), "some code")
	if got.Issues == nil || len(got.Issues) != 0 {
		t.Errorf("Issues = %v, want empty non-nil slice", got.Issues)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo wörld", 5); got != "héllo" {
		t.Errorf("truncate() = %q, want rune-safe prefix", got)
	}
	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate() = %q, want input unchanged", got)
	}
}
