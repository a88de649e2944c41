// Package diaglog provides the append-only diagnostic log. Analysis failures
// are flattened into canonical result records for callers; this log is the
// only place the raw error detail survives for postmortem.
package diaglog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileName = "analysis.log"

// Logger appends timestamped error lines to a single log file, echoing each
// line to the console.
type Logger struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// New creates a Logger writing to analysis.log inside dir, creating the
// directory if needed.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &Logger{
		path: filepath.Join(dir, fileName),
		now:  time.Now,
	}, nil
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Errorf records a formatted error line. Failures to write the log itself
// are reported on the console only; they never interrupt an analysis run.
func (l *Logger) Errorf(format string, args ...any) {
	entry := fmt.Sprintf("[%s] ERROR: %s\n",
		l.now().Format("2006-01-02 15:04:05"),
		fmt.Sprintf(format, args...),
	)
	log.Print(entry[:len(entry)-1])

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		log.Printf("warning: opening diagnostic log: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(entry); err != nil {
		log.Printf("warning: writing diagnostic log: %v", err)
	}
}
