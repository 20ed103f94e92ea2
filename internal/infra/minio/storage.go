package minio

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage stages session frames in a single MinIO (or any S3-compatible)
// bucket.
type Storage struct {
	client *miniogo.Client
	bucket string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{client: client, bucket: cfg.Bucket}, nil
}

func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *Storage) Put(ctx context.Context, localPath string, objectName string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, objectName, localPath, miniogo.PutObjectOptions{
		ContentType: contentType(localPath),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectName, err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, objectName string, destPath string) error {
	if err := s.client.FGetObject(ctx, s.bucket, objectName, destPath, miniogo.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download %s: %w", objectName, err)
	}
	return nil
}

// Delete removes objectName. S3 semantics already treat a missing key as
// success.
func (s *Storage) Delete(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, miniogo.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", objectName, err)
	}
	return nil
}

func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
