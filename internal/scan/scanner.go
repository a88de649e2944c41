// Package scan drives a whole comparison run: base repository against its
// forks, one model comparison per common file, summaries per fork.
package scan

import (
	"context"
	"log"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"forklens/internal/analyzer"
	"forklens/internal/contentcache"
	"forklens/internal/llm"
	"forklens/internal/provider"
)

// Config holds scan bounds. Workers caps concurrent comparisons per fork;
// local model processes rarely tolerate high concurrency, so the default
// stays low.
type Config struct {
	MaxForks int
	MaxFiles int
	Workers  int
}

// FileComparison pairs a path with its comparison outcome.
type FileComparison struct {
	Path       string               `json:"file_path"`
	Comparison llm.ComparisonResult `json:"comparison"`
}

// ForkComparison is the full outcome for one fork.
type ForkComparison struct {
	Fork    string           `json:"fork"`
	ForkURL string           `json:"fork_url"`
	Files   []FileComparison `json:"files"`
	Summary analyzer.Summary `json:"summary"`
}

// RunResult is the outcome of one base-vs-forks run.
type RunResult struct {
	BaseRepository string           `json:"base_repository"`
	AnalysisDate   string           `json:"analysis_date"`
	ForksAnalyzed  int              `json:"forks_analyzed"`
	Comparisons    []ForkComparison `json:"comparisons"`
}

// FileQuality pairs a path with its quality report.
type FileQuality struct {
	File     string            `json:"file"`
	Analysis llm.QualityReport `json:"analysis"`
}

// Scanner runs comparison and quality scans against one provider.
type Scanner struct {
	provider provider.Provider
	cache    *contentcache.Cache
	analyzer *analyzer.Analyzer
	cfg      Config
	rnd      *rand.Rand
}

// New creates a Scanner. Zero config values select the defaults (5 forks,
// 20 files, 4 workers).
func New(p provider.Provider, cache *contentcache.Cache, a *analyzer.Analyzer, cfg Config) *Scanner {
	if cfg.MaxForks == 0 {
		cfg.MaxForks = 5
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 20
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	return &Scanner{
		provider: p,
		cache:    cache,
		analyzer: a,
		cfg:      cfg,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ScanForks compares a base repository against its forks. Individual
// comparison failures resolve to failure records inside the results; the
// run itself fails only when the base repository or fork list cannot be
// fetched, or the context is cancelled.
func (s *Scanner) ScanForks(ctx context.Context, owner, repo string) (*RunResult, error) {
	base, err := s.provider.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	log.Printf("base repository %s (%d forks)", base.FullName, base.ForksCount)

	forks, err := s.provider.ListForks(ctx, owner, repo, s.cfg.MaxForks)
	if err != nil {
		return nil, err
	}
	log.Printf("found %d forks to analyze", len(forks))

	run := &RunResult{
		BaseRepository: base.FullName,
		AnalysisDate:   time.Now().Format("20060102_150405"),
		ForksAnalyzed:  len(forks),
		Comparisons:    make([]ForkComparison, 0, len(forks)),
	}

	for i, fork := range forks {
		log.Printf("analyzing fork %d/%d: %s", i+1, len(forks), fork.FullName)
		comparison, err := s.compareFork(ctx, base.FullName, fork)
		if err != nil {
			return nil, err
		}
		run.Comparisons = append(run.Comparisons, comparison)
	}

	return run, nil
}

// compareFork compares the files the fork still shares with the base. File
// listing or fetch problems skip the affected files; the returned value is
// always shape-complete, with a zero-filled summary when nothing could be
// compared.
func (s *Scanner) compareFork(ctx context.Context, baseFullName string, fork provider.Fork) (ForkComparison, error) {
	out := ForkComparison{
		Fork:    fork.FullName,
		ForkURL: fork.URL,
		Files:   []FileComparison{},
		Summary: analyzer.Aggregate(nil),
	}

	common, err := s.commonFiles(ctx, baseFullName, fork.FullName)
	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		log.Printf("warning: listing files for %s: %v", fork.FullName, err)
		return out, nil
	}

	slots := make([]*FileComparison, len(common))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, path := range common {
		i, path := i, path
		g.Go(func() error {
			baseContent, err := s.cache.GetFileContent(gctx, baseFullName, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("warning: fetching %s/%s: %v", baseFullName, path, err)
				return nil
			}
			forkContent, err := s.cache.GetFileContent(gctx, fork.FullName, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("warning: fetching %s/%s: %v", fork.FullName, path, err)
				return nil
			}

			result := s.analyzer.Compare(gctx, baseContent, forkContent)
			slots[i] = &FileComparison{Path: path, Comparison: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}

	results := make([]llm.ComparisonResult, 0, len(slots))
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		out.Files = append(out.Files, *slot)
		results = append(results, slot.Comparison)
	}
	out.Summary = analyzer.Aggregate(results)
	return out, nil
}

// ScanQuality runs the quality prompt over a random sample of a
// repository's top-level files.
func (s *Scanner) ScanQuality(ctx context.Context, fullName string, sampleSize int) ([]FileQuality, error) {
	entries, err := s.provider.ListFiles(ctx, fullName, "")
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.Type == provider.EntryTypeFile {
			paths = append(paths, entry.Path)
		}
	}
	paths = s.sample(paths, sampleSize)
	log.Printf("analyzing %d files from %s", len(paths), fullName)

	reports := make([]FileQuality, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		content, err := s.cache.GetFileContent(ctx, fullName, path)
		if err != nil {
			log.Printf("warning: fetching %s/%s: %v", fullName, path, err)
			continue
		}
		reports = append(reports, FileQuality{
			File:     path,
			Analysis: s.analyzer.AnalyzeQuality(ctx, content),
		})
	}
	return reports, nil
}

// commonFiles returns the sorted paths of top-level files present in both
// repositories, capped at MaxFiles.
func (s *Scanner) commonFiles(ctx context.Context, baseFullName, forkFullName string) ([]string, error) {
	baseEntries, err := s.provider.ListFiles(ctx, baseFullName, "")
	if err != nil {
		return nil, err
	}
	forkEntries, err := s.provider.ListFiles(ctx, forkFullName, "")
	if err != nil {
		return nil, err
	}

	baseFiles := make(map[string]bool, len(baseEntries))
	for _, entry := range baseEntries {
		if entry.Type == provider.EntryTypeFile {
			baseFiles[entry.Path] = true
		}
	}

	var common []string
	for _, entry := range forkEntries {
		if entry.Type == provider.EntryTypeFile && baseFiles[entry.Path] {
			common = append(common, entry.Path)
		}
	}
	sort.Strings(common)

	if len(common) > s.cfg.MaxFiles {
		common = common[:s.cfg.MaxFiles]
	}
	return common, nil
}

// sample picks at most n paths uniformly without replacement.
func (s *Scanner) sample(paths []string, n int) []string {
	if n <= 0 || n >= len(paths) {
		return paths
	}
	shuffled := append([]string(nil), paths...)
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}
