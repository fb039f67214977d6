// Package sampler reads the external FPS counter resource and drives the
// periodic sampling loop. The counter is a small text file whose content is
// rewritten in place by an external producer; only the latest value matters.
package sampler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrResourceUnavailable indicates the counter resource could not be opened.
// This is fatal: the resource is provisioned by system configuration, so there
// is no retry path. Callers should terminate the component.
var ErrResourceUnavailable = errors.New("counter resource unavailable")

// probeBufSize bounds a single probe read. Counter files hold a short decimal
// value, typically under a dozen bytes.
const probeBufSize = 128

// Source yields the latest raw counter text on demand.
// Implementations must be safe for use from a single sampling goroutine
// concurrently with Close from another goroutine.
type Source interface {
	// Probe returns the current raw content of the counter resource.
	Probe() (string, error)
	// Close releases the underlying resource handle.
	Close() error
}

// FileSource reads the counter from a local file. The file is opened once at
// construction and the handle is held until Close; every probe repositions the
// read cursor to the start of the file.
type FileSource struct {
	path string
	mu   sync.Mutex
	file *os.File
	buf  []byte
}

// OpenFileSource opens the counter file at path read-only.
// A failure to open wraps ErrResourceUnavailable.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrResourceUnavailable, path, err)
	}
	return &FileSource{
		path: path,
		file: f,
		buf:  make([]byte, probeBufSize),
	}, nil
}

// Probe seeks to the start of the counter file and reads its current content.
func (s *FileSource) Probe() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return "", fmt.Errorf("probe %s: source closed", s.path)
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seeking %s: %w", s.path, err)
	}

	n, err := s.file.Read(s.buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading %s: %w", s.path, err)
	}
	return string(s.buf[:n]), nil
}

// Close releases the file handle. Safe to call multiple times.
func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Path returns the counter file path.
func (s *FileSource) Path() string {
	return s.path
}
