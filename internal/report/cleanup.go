package report

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cleaner removes report files older than a retention period. The
// diagnostic log is left alone; it is the postmortem record.
type Cleaner struct {
	baseDir       string
	retentionDays int
}

// NewCleaner creates a Cleaner over the given output directory.
func NewCleaner(baseDir string, retentionDays int) *Cleaner {
	return &Cleaner{baseDir: baseDir, retentionDays: retentionDays}
}

// Cleanup deletes expired report files and returns how many were removed.
// A non-positive retention disables cleanup.
func (c *Cleaner) Cleanup() (int, error) {
	if c.retentionDays <= 0 {
		return 0, nil
	}

	threshold := time.Now().AddDate(0, 0, -c.retentionDays)
	var deleted int

	err := filepath.Walk(c.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() || !isReportFile(path) {
			return nil
		}
		if info.ModTime().Before(threshold) {
			if err := os.Remove(path); err == nil {
				deleted++
			}
		}
		return nil
	})

	return deleted, err
}

func isReportFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json":
		return true
	}
	return false
}
