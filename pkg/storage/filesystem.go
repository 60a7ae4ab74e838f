package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReportStore persists generated report artifacts on disk. Handles are
// opaque names relative to the base directory, never absolute paths.
type ReportStore struct {
	baseDir string
}

// NewReportStore ensures the base directory exists and returns a handle.
func NewReportStore(baseDir string) (*ReportStore, error) {
	if baseDir == "" {
		baseDir = "./reports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}
	return &ReportStore{baseDir: baseDir}, nil
}

// Put writes report bytes under the given handle.
func (s *ReportStore) Put(handle string, data []byte) error {
	path, err := s.resolve(handle)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

// PutStream copies from reader into the file named by the handle.
func (s *ReportStore) PutStream(handle string, r io.Reader) error {
	path, err := s.resolve(handle)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare report directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("write report stream: %w", err)
	}
	return nil
}

// Open returns a read-only handle for the stored report.
// os.ErrNotExist is returned unwrapped-compatible so callers can
// distinguish a lost artifact from an IO failure.
func (s *ReportStore) Open(handle string) (*os.File, error) {
	path, err := s.resolve(handle)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("open report file: %w", err)
	}
	return file, nil
}

// Delete removes a stored report if present.
func (s *ReportStore) Delete(handle string) error {
	path, err := s.resolve(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete report file: %w", err)
	}
	return nil
}

// Exists reports whether the artifact for the handle is present.
func (s *ReportStore) Exists(handle string) bool {
	path, err := s.resolve(handle)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(path)
	return statErr == nil
}

func (s *ReportStore) resolve(handle string) (string, error) {
	if handle == "" {
		return "", fmt.Errorf("empty report handle")
	}
	cleaned := filepath.Clean(handle)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid report handle %q", handle)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
