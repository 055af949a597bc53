package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	maxLogFileBytes  = 6 * 1024 * 1024
	keepLogFileBytes = 5 * 1024 * 1024
)

// LogFile is an append-only log sink. Once the file grows past its limit it
// is cut back to the most recent tail.
type LogFile struct {
	mu    sync.Mutex
	file  *os.File
	limit int64
	keep  int64
}

// OpenLogFile opens or creates path, creating parent directories.
func OpenLogFile(path string) (*LogFile, error) {
	return openLogFile(path, maxLogFileBytes, keepLogFileBytes)
}

func openLogFile(path string, limit, keep int64) (*LogFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	lf := &LogFile{file: file, limit: limit, keep: keep}
	if err := lf.trim(); err != nil {
		file.Close()
		return nil, err
	}
	return lf, nil
}

func (l *LogFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, l.trim()
}

func (l *LogFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// trim must be called with mu held (or before the file is shared).
func (l *LogFile) trim() error {
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= l.limit {
		return nil
	}

	tail := make([]byte, l.keep)
	n, err := l.file.ReadAt(tail, size-l.keep)
	if err != nil && err != io.EOF {
		return err
	}
	if err := l.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end after truncation.
	_, err = l.file.Write(tail[:n])
	return err
}
