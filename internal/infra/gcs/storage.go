package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
)

// Storage stages session frames in a Google Cloud Storage bucket.
// Credentials come from Application Default Credentials.
type Storage struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func NewStorage(ctx context.Context, bucket string) (*Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &Storage{client: client, bucket: client.Bucket(bucket)}, nil
}

// EnsureBucket creates the bucket in projectID when it does not exist yet.
func (s *Storage) EnsureBucket(ctx context.Context, projectID string) error {
	_, err := s.bucket.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("check bucket: %w", err)
	}
	if err := s.bucket.Create(ctx, projectID, nil); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func (s *Storage) Put(ctx context.Context, localPath string, objectName string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	w := s.bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType(localPath)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("upload %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", objectName, err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, objectName string, destPath string) error {
	r, err := s.bucket.Object(objectName).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open %s: %w", objectName, err)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", destPath, err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("download %s: %w", objectName, err)
	}
	return out.Close()
}

func (s *Storage) Delete(ctx context.Context, objectName string) error {
	err := s.bucket.Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", objectName, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
