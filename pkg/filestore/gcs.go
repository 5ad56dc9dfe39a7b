package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSStore keeps objects under Prefix in one bucket.
type GCSStore struct {
	bucket     *storage.BucketHandle
	bucketName string
	prefix     string
}

// NewGCSStore wraps a bucket handle, usually obtained from the Firebase
// app's Storage client.
func NewGCSStore(bucket *storage.BucketHandle, bucketName, prefix string) *GCSStore {
	return &GCSStore{bucket: bucket, bucketName: bucketName, prefix: strings.Trim(prefix, "/")}
}

func (s *GCSStore) Save(ctx context.Context, originalName, contentType string, r io.Reader) (StoredFile, error) {
	name := generateName(originalName)
	object := name
	if s.prefix != "" {
		object = s.prefix + "/" + name
	}

	w := s.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.ContentDisposition = fmt.Sprintf("attachment; filename=%q", originalName)
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return StoredFile{}, fmt.Errorf("upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return StoredFile{}, fmt.Errorf("finalize %s: %w", object, err)
	}
	return StoredFile{Filename: name, Path: object, Size: n}, nil
}

func (s *GCSStore) Open(ctx context.Context, object string) (io.ReadCloser, error) {
	rc, err := s.bucket.Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", object, err)
	}
	return rc, nil
}

func (s *GCSStore) Delete(ctx context.Context, object string) error {
	err := s.bucket.Object(object).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrNotExist
	}
	return err
}

func (s *GCSStore) URL(object string) string {
	if object == "" {
		return ""
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, (&url.URL{Path: object}).EscapedPath())
}
