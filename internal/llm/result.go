package llm

import (
	"encoding/json"
	"fmt"
)

// RefactoringLevel is the coarse bucket describing how far a compared pair's
// structure diverges. The model is instructed to answer with one of the four
// known levels; "unknown" is reserved for failed analyses. Whatever string
// the model actually emitted is carried through unchanged.
type RefactoringLevel string

const (
	RefactoringNone    RefactoringLevel = "none"
	RefactoringLow     RefactoringLevel = "low"
	RefactoringMedium  RefactoringLevel = "medium"
	RefactoringHigh    RefactoringLevel = "high"
	RefactoringUnknown RefactoringLevel = "unknown"
)

// Levels lists the four real refactoring levels in display order.
func Levels() []RefactoringLevel {
	return []RefactoringLevel{RefactoringNone, RefactoringLow, RefactoringMedium, RefactoringHigh}
}

// Default values filled in for fields the model omitted.
const (
	defaultNotes = "No analysis available"
)

// QualityIssue is a single finding from the quality-analysis prompt.
type QualityIssue struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	ToolMissed     bool   `json:"tool_missed"`
}

// ComparisonResult is the normalized outcome of one file-pair comparison.
// Every field is always populated: after normalization a result is never
// partial, whether the analysis succeeded or not. Failures are recognizable
// by RefactoringLevel "unknown" together with the cause recorded in Notes.
type ComparisonResult struct {
	SimilarityPercentage int              `json:"similarity_percentage"`
	RefactoringLevel     RefactoringLevel `json:"refactoring_level"`
	AddedFeatures        bool             `json:"added_features"`
	RemovedFeatures      bool             `json:"removed_features"`
	Notes                string           `json:"notes"`
	QualityIssues        []QualityIssue   `json:"quality_issues"`
}

// QualityReport is the normalized outcome of one single-file quality scan.
type QualityReport struct {
	Issues []QualityIssue `json:"issues"`
}

// comparisonPayload mirrors ComparisonResult with pointer fields so that an
// absent key can be told apart from a zero value during normalization.
type comparisonPayload struct {
	SimilarityPercentage *int              `json:"similarity_percentage"`
	RefactoringLevel     *RefactoringLevel `json:"refactoring_level"`
	AddedFeatures        *bool             `json:"added_features"`
	RemovedFeatures      *bool             `json:"removed_features"`
	Notes                *string           `json:"notes"`
	QualityIssues        []QualityIssue    `json:"quality_issues"`
}

// DecodeComparison parses an extracted payload and fills in defaults for any
// required field the model left out. The decode is strict: a present field of
// the wrong JSON type is an error, reported to the caller rather than coerced
// or silently dropped.
func DecodeComparison(payload string) (ComparisonResult, error) {
	var p comparisonPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return ComparisonResult{}, fmt.Errorf("decoding comparison payload: %w", err)
	}

	out := ComparisonResult{
		RefactoringLevel: RefactoringUnknown,
		Notes:            defaultNotes,
		QualityIssues:    []QualityIssue{},
	}
	if p.SimilarityPercentage != nil {
		out.SimilarityPercentage = *p.SimilarityPercentage
	}
	if p.RefactoringLevel != nil {
		out.RefactoringLevel = *p.RefactoringLevel
	}
	if p.AddedFeatures != nil {
		out.AddedFeatures = *p.AddedFeatures
	}
	if p.RemovedFeatures != nil {
		out.RemovedFeatures = *p.RemovedFeatures
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.QualityIssues != nil {
		out.QualityIssues = p.QualityIssues
	}
	return out, nil
}

// DecodeQualityReport parses an extracted quality payload. A missing issues
// key normalizes to an empty list, never nil.
func DecodeQualityReport(payload string) (QualityReport, error) {
	var r QualityReport
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return QualityReport{}, fmt.Errorf("decoding quality payload: %w", err)
	}
	if r.Issues == nil {
		r.Issues = []QualityIssue{}
	}
	return r, nil
}

// Failure builds the canonical failure record for the given cause. It has
// the same shape as a successful result so callers never branch on shape,
// only on the sentinel values or the diagnostic log.
func Failure(cause error) ComparisonResult {
	return ComparisonResult{
		SimilarityPercentage: 0,
		RefactoringLevel:     RefactoringUnknown,
		AddedFeatures:        false,
		RemovedFeatures:      false,
		Notes:                fmt.Sprintf("Error in analysis: %v", cause),
		QualityIssues:        []QualityIssue{},
	}
}
