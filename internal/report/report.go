// Package report persists scan results as CSV and JSON files in the output
// directory. The writers are pure formatting: every field of a comparison
// result round-trips losslessly.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"forklens/internal/llm"
	"forklens/internal/scan"
)

// Writer writes report files into a base directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer, creating the directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteForkCSV writes the per-file detail report for one fork.
func (w *Writer) WriteForkCSV(comp scan.ForkComparison, timestamp string) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("report_%s_%s.csv", sanitize(comp.Fork), timestamp))

	rows := [][]string{
		{"File", "Similarity", "Refactoring", "Added Features", "Removed Features", "Notes"},
	}
	for _, file := range comp.Files {
		c := file.Comparison
		rows = append(rows, []string{
			file.Path,
			fmt.Sprintf("%d%%", c.SimilarityPercentage),
			string(c.RefactoringLevel),
			strconv.FormatBool(c.AddedFeatures),
			strconv.FormatBool(c.RemovedFeatures),
			c.Notes,
		})
	}

	return path, writeCSV(path, rows)
}

// WriteMainCSV writes the per-fork summary report for a whole run.
func (w *Writer) WriteMainCSV(run *scan.RunResult, timestamp string) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("main_report_%s.csv", timestamp))

	rows := [][]string{
		{"fork_name", "fork_url", "files_compared", "avg_similarity",
			"refactoring_none", "refactoring_low", "refactoring_medium", "refactoring_high"},
	}
	for _, comp := range run.Comparisons {
		dist := comp.Summary.RefactoringDistribution
		rows = append(rows, []string{
			comp.Fork,
			comp.ForkURL,
			strconv.Itoa(comp.Summary.FilesCompared),
			formatFloat(comp.Summary.AverageSimilarity),
			strconv.Itoa(dist[llm.RefactoringNone]),
			strconv.Itoa(dist[llm.RefactoringLow]),
			strconv.Itoa(dist[llm.RefactoringMedium]),
			strconv.Itoa(dist[llm.RefactoringHigh]),
		})
	}

	return path, writeCSV(path, rows)
}

// WriteQACSV writes the pass/fail quality-assurance report for a run. A fork
// passes when at least one file pair could be compared.
func (w *Writer) WriteQACSV(run *scan.RunResult, timestamp string) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("quality_report_%s.csv", timestamp))

	rows := [][]string{
		{"fork_name", "files_compared", "avg_similarity", "status",
			"has_high_refactoring", "has_removed_features"},
	}
	for _, comp := range run.Comparisons {
		status := "FAIL"
		if comp.Summary.FilesCompared > 0 {
			status = "PASS"
		}
		hasRemoved := false
		for _, file := range comp.Files {
			if file.Comparison.RemovedFeatures {
				hasRemoved = true
				break
			}
		}
		rows = append(rows, []string{
			comp.Fork,
			strconv.Itoa(comp.Summary.FilesCompared),
			formatFloat(comp.Summary.AverageSimilarity),
			status,
			strconv.FormatBool(comp.Summary.RefactoringDistribution[llm.RefactoringHigh] > 0),
			strconv.FormatBool(hasRemoved),
		})
	}

	return path, writeCSV(path, rows)
}

// WriteRunJSON writes the complete run, summaries and all, as indented JSON.
func (w *Writer) WriteRunJSON(run *scan.RunResult, timestamp string) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("full_analysis_%s.json", timestamp))
	return path, writeJSON(path, run)
}

// WriteQualityJSON writes a quality scan's per-file reports as indented JSON.
func (w *Writer) WriteQualityJSON(fullName string, reports []scan.FileQuality, timestamp string) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("quality_%s_%s.json", sanitize(fullName), timestamp))
	return path, writeJSON(path, reports)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing report rows: %w", err)
	}
	return cw.Error()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// sanitize turns owner/repo into a filename-safe fragment.
func sanitize(fullName string) string {
	return strings.ReplaceAll(fullName, "/", "_")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
