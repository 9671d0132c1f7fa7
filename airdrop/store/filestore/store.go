// Package filestore persists run results as an append-only text file, one entry per line.
package filestore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/screwyprof/airdrop/airdrop"
)

// Sentinel errors for store operations
var (
	ErrOpenFailed   = errors.New("failed to open result file")
	ErrAppendFailed = errors.New("failed to append entry")
	ErrClosed       = errors.New("result file closed")
)

// Store implements airdrop.Sink over a file opened in append mode.
// Existing content is never truncated; keys already in the file are
// loaded on Open so a rerun can skip them.
type Store struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	recorded map[string]struct{}
}

// Open creates the file if needed (with its directory) and opens it for appending
func Open(path string) (*Store, error) {
	recorded, err := loadKeys(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, path, err)
	}

	return &Store{file: f, path: path, recorded: recorded}, nil
}

// Append writes e as one whole line. Concurrent appends never interleave.
func (s *Store) Append(ctx context.Context, e airdrop.Entry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}

	line := e.Line() + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("%w: %s", ErrClosed, s.path)
	}
	if _, err := s.file.WriteString(line); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAppendFailed, s.path, err)
	}
	s.recorded[e.Key()] = struct{}{}
	return nil
}

// Recorded reports whether key was in the file on Open or has been appended since
func (s *Store) Recorded(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.recorded[key]
	return ok
}

// Len returns the number of distinct keys recorded
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.recorded)
}

// Close flushes and closes the file. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// loadKeys reads the key of every line already in the file. A missing file has none.
func loadKeys(path string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return keys, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if key := KeyOf(scanner.Text()); key != "" {
			keys[key] = struct{}{}
		}
	}
	return keys, scanner.Err()
}

// KeyOf extracts the key of a stored line: everything before the first ':'
func KeyOf(line string) string {
	key, _, _ := strings.Cut(line, ":")
	return strings.TrimSpace(key)
}
