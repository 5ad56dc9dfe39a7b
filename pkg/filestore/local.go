package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes files under Dir. They are served by the /uploads static
// route.
type LocalStore struct {
	Dir string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) Save(ctx context.Context, originalName, _ string, r io.Reader) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}
	name := generateName(originalName)
	filePath := filepath.ToSlash(filepath.Join(s.Dir, name))

	f, err := os.Create(filePath)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create %s: %w", filePath, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filePath)
		return StoredFile{}, fmt.Errorf("write %s: %w", filePath, err)
	}
	return StoredFile{Filename: name, Path: filePath, Size: n}, nil
}

// Open refuses paths outside Dir.
func (s *LocalStore) Open(_ context.Context, filePath string) (io.ReadCloser, error) {
	if !s.contains(filePath) {
		return nil, ErrNotExist
	}
	f, err := os.Open(filepath.FromSlash(filePath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	return f, err
}

func (s *LocalStore) Delete(_ context.Context, filePath string) error {
	if !s.contains(filePath) {
		return ErrNotExist
	}
	err := os.Remove(filepath.FromSlash(filePath))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	return err
}

// URL locates the /uploads/ segment of the path. Paths under Dir without
// such a segment map to /uploads/<relative path>.
func (s *LocalStore) URL(filePath string) string {
	p := "/" + strings.TrimPrefix(filepath.ToSlash(filePath), "/")
	if i := strings.LastIndex(p, "/uploads/"); i >= 0 {
		return p[i:]
	}
	if !s.contains(filePath) {
		return ""
	}
	rel, err := filepath.Rel(filepath.Clean(s.Dir), filepath.Clean(filepath.FromSlash(filePath)))
	if err != nil {
		return ""
	}
	return "/uploads/" + filepath.ToSlash(rel)
}

func (s *LocalStore) contains(filePath string) bool {
	dir, err := filepath.Abs(s.Dir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(filepath.FromSlash(filePath))
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}
