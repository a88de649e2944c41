// Package analyzer runs the comparison pipeline: compose prompt, invoke the
// model, extract and normalize the payload. Failures never escape as errors;
// every comparison resolves to a shape-complete result record, with the raw
// cause preserved in the diagnostic log.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forklens/internal/diaglog"
	"forklens/internal/llm"
	"forklens/internal/metrics"
	"forklens/internal/model"
)

const (
	// DefaultCompareTimeout bounds one comparison invocation.
	DefaultCompareTimeout = 120 * time.Second
	// DefaultTruncateLimit caps each side of the prompt, in runes. Local
	// models have small context windows.
	DefaultTruncateLimit = 10000
)

// Config holds analyzer tunables. Zero values select the defaults above;
// QualityTimeout stays unbounded when zero, matching the original tool's
// asymmetry between the two call sites.
type Config struct {
	CompareTimeout time.Duration
	QualityTimeout time.Duration
	TruncateLimit  int
}

// Analyzer orchestrates model invocations for file comparison and quality
// analysis. It holds no per-call state; one Analyzer is safe for concurrent
// use as long as its Runner is.
type Analyzer struct {
	runner model.Runner
	cfg    Config
	diag   *diaglog.Logger
}

// New creates an Analyzer around the given runner. diag may be nil, in which
// case failure detail is lost beyond the result's notes field.
func New(runner model.Runner, cfg Config, diag *diaglog.Logger) *Analyzer {
	if cfg.CompareTimeout == 0 {
		cfg.CompareTimeout = DefaultCompareTimeout
	}
	if cfg.TruncateLimit == 0 {
		cfg.TruncateLimit = DefaultTruncateLimit
	}
	return &Analyzer{runner: runner, cfg: cfg, diag: diag}
}

// Compare semantically compares two file contents and returns a normalized
// result. It never returns an error: invocation failures, missing payloads
// and parse errors all collapse into the canonical failure record.
func (a *Analyzer) Compare(ctx context.Context, original, variant string) llm.ComparisonResult {
	metrics.ComparisonRun()

	prompt := comparePrompt(
		truncate(original, a.cfg.TruncateLimit),
		truncate(variant, a.cfg.TruncateLimit),
	)

	res, err := a.runner.Run(ctx, prompt, a.cfg.CompareTimeout)
	if err != nil {
		return a.failComparison("running model", err)
	}

	payload, err := llm.ExtractPayload(res.Stdout)
	if err != nil {
		return a.failComparison("extracting payload", err)
	}

	out, err := llm.DecodeComparison(payload)
	if err != nil {
		return a.failComparison("normalizing payload", err)
	}
	return out
}

// AnalyzeQuality asks the model for quality issues in a single file. Like
// Compare it never returns an error; any failure yields an empty report.
func (a *Analyzer) AnalyzeQuality(ctx context.Context, code string) llm.QualityReport {
	metrics.QualityScanRun()

	prompt := qualityPrompt(truncate(code, a.cfg.TruncateLimit))

	res, err := a.runner.Run(ctx, prompt, a.cfg.QualityTimeout)
	if err != nil {
		return a.failQuality("running model", err)
	}

	payload, err := llm.ExtractPayload(res.Stdout)
	if err != nil {
		return a.failQuality("extracting payload", err)
	}

	report, err := llm.DecodeQualityReport(payload)
	if err != nil {
		return a.failQuality("decoding payload", err)
	}
	return report
}

func (a *Analyzer) failComparison(stage string, err error) llm.ComparisonResult {
	metrics.ComparisonFailed()
	var timeoutErr *model.TimeoutError
	if errors.As(err, &timeoutErr) {
		metrics.ComparisonTimedOut()
	}
	if a.diag != nil {
		a.diag.Errorf("comparison failed while %s: %v", stage, err)
	}
	return llm.Failure(err)
}

func (a *Analyzer) failQuality(stage string, err error) llm.QualityReport {
	metrics.QualityScanFailed()
	if a.diag != nil {
		a.diag.Errorf("quality analysis failed while %s: %v", stage, err)
	}
	return llm.QualityReport{Issues: []llm.QualityIssue{}}
}

// truncate bounds s to limit runes. Rune-based so a multibyte character is
// never split at the boundary.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func comparePrompt(original, variant string) string {
	return fmt.Sprintf(`Compare the following two code files semantically and identify:
1. Similarity percentage (0-100)
2. Refactoring level (none, low, medium, high)
3. Whether features were added or removed
4. Brief description of changes

ORIGINAL:
`+"```"+`
%s
`+"```"+`

FORK VERSION:
`+"```"+`
%s
`+"```"+`

Return ONLY valid JSON format:
{
    "similarity_percentage": int,
    "refactoring_level": "none|low|medium|high",
    "added_features": bool,
    "removed_features": bool,
    "notes": str
}`, original, variant)
}

func qualityPrompt(code string) string {
	return fmt.Sprintf(`Analyze this code for quality issues that static analysis tools might miss:
1. Architectural smells
2. Testability issues
3. Hidden bugs
4. Security vulnerabilities
5. Code smells

Code:
`+"```"+`
%s
`+"```"+`

Return JSON format:
{
    "issues": [
        {
            "type": str,
            "severity": "low|medium|high",
            "description": str,
            "recommendation": str,
            "tool_missed": bool
        }
    ]
}`, code)
}
