package diaglog

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLogger_Errorf(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}

	logger.Errorf("running model: %s", "timeout after 120s")
	logger.Errorf("second entry")

	data, err := os.ReadFile(logger.Path())
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	want := "[2026-03-14 09:26:53] ERROR: running model: timeout after 120s"
	if lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
	if !strings.Contains(lines[1], "second entry") {
		t.Errorf("line = %q, want second entry appended", lines[1])
	}
}
