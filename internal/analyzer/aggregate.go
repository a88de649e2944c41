package analyzer

import "forklens/internal/llm"

// Summary is a pure fold over a batch of comparison results. It is always
// recomputed from its inputs, never persisted independently.
type Summary struct {
	AverageSimilarity       float64                      `json:"average_similarity"`
	RefactoringDistribution map[llm.RefactoringLevel]int `json:"refactoring_distribution"`
	FilesCompared           int                          `json:"files_compared"`
}

// Aggregate summarizes a batch of results. An empty batch is a valid input
// and yields a zero average, not an error. The distribution always carries
// all four real levels, zero-filled; "unknown" results have no bucket but
// still count toward FilesCompared and pull the average down with their
// zero similarity.
func Aggregate(results []llm.ComparisonResult) Summary {
	dist := make(map[llm.RefactoringLevel]int, 4)
	for _, level := range llm.Levels() {
		dist[level] = 0
	}

	total := 0
	for _, r := range results {
		total += r.SimilarityPercentage
		if _, ok := dist[r.RefactoringLevel]; ok {
			dist[r.RefactoringLevel]++
		}
	}

	avg := 0.0
	if len(results) > 0 {
		avg = float64(total) / float64(len(results))
	}

	return Summary{
		AverageSimilarity:       avg,
		RefactoringDistribution: dist,
		FilesCompared:           len(results),
	}
}
