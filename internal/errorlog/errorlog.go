// Package errorlog records lesson videos that failed to materialize so the
// operator can find them after a long unattended run.
package errorlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Log appends one line per failed unit to a shared file. It is safe for use by
// concurrent course tasks.
type Log struct {
	mu   sync.Mutex
	path string
}

// New returns a Log writing to path. The file is created on first append.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Append writes name followed by a newline.
func (l *Log) Append(name string) error {
	if l == nil || l.path == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create error log directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	if _, err := fmt.Fprintln(f, name); err != nil {
		_ = f.Close()
		return fmt.Errorf("append error log: %w", err)
	}
	return f.Close()
}
