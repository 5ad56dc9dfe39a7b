// Package filestore keeps uploaded disaster attachments on local disk or in
// a Cloud Storage bucket.
package filestore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotExist is returned when the stored file is gone.
var ErrNotExist = errors.New("filestore: file does not exist")

// StoredFile describes a file after Save.
type StoredFile struct {
	Filename string // generated name
	Path     string // backend-specific location passed back to Open and Delete
	Size     int64
}

// Store is implemented by every backend.
type Store interface {
	Save(ctx context.Context, originalName, contentType string, r io.Reader) (StoredFile, error)
	Open(ctx context.Context, filePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, filePath string) error
	// URL returns the public URL of a stored path, or "" if it has none.
	URL(filePath string) string
}

// generateName keeps the original extension so browsers pick the right
// handler when the file is served statically.
func generateName(originalName string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(originalName, "\\", "/")))
	if len(ext) > 10 || strings.ContainsAny(ext, " /?#%") {
		ext = ""
	}
	return uuid.NewString() + ext
}
