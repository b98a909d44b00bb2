package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"teacher_savings_portal/internal/domain/report"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// LocalFileStore keeps uploaded reports on local disk under <root>/<year>/<MM>/.
type LocalFileStore struct {
	root string
}

func NewLocalFileStore(root string) (*LocalFileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid upload directory %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %q: %w", abs, err)
	}
	return &LocalFileStore{root: abs}, nil
}

// Save writes the file and returns its location relative to the store root.
func (s *LocalFileStore) Save(ctx context.Context, upload *report.Upload, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	location := filepath.ToSlash(filepath.Join(
		fmt.Sprintf("%04d", upload.Period.Year),
		fmt.Sprintf("%02d", upload.Period.Month),
		fmt.Sprintf("%s-%s", upload.ID, sanitizeName(upload.FileName)),
	))
	path := filepath.Join(s.root, filepath.FromSlash(location))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return location, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *LocalFileStore) Remove(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(location)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove report file: %w", err)
	}
	return nil
}

func (s *LocalFileStore) resolve(location string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(location))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("location %q is outside the upload directory", location)
	}
	return path, nil
}

func sanitizeName(name string) string {
	name = unsafeNameChars.ReplaceAllString(filepath.Base(name), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "report"
	}
	return name
}
