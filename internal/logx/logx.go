// Package logx is the ambient debug logger used across red64: a
// mutex-protected append-only file logger rooted at
// <workDir>/.red64/logs/.
package logx

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes timestamped lines to a single append-only file. The
// zero value and a nil *Logger are both safe no-ops, so callers that
// don't configure logging pay no cost.
type Logger struct {
	mu   sync.Mutex
	file *os.File
}

// New opens (creating parent directories as needed) a logger at path.
// An empty path yields a no-op logger.
func New(path string) (*Logger, error) {
	if path == "" {
		return &Logger{}, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logx: create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logx: open log file: %w", err)
	}

	l := &Logger{file: f}
	l.Log("=== red64 log started at %s ===", time.Now().Format(time.RFC3339))
	return l, nil
}

// ForProject opens the standard per-project debug log at
// <workDir>/.red64/logs/red64-debug.log. Falls back to a no-op logger
// if it cannot be created so logging failures never block the caller.
func ForProject(workDir string) *Logger {
	path := filepath.Join(workDir, ".red64", "logs", "red64-debug.log")
	l, err := New(path)
	if err != nil {
		return &Logger{}
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{}
}

// Log writes one timestamped line. No-op on a nil or fileless Logger.
func (l *Logger) Log(format string, args ...interface{}) {
	if l == nil || l.file == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(l.file, "[%s] %s\n", ts, msg)
	l.file.Sync()
}

// Close closes the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
