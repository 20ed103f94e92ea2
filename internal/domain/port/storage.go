package port

import "context"

// BlobStore is the session staging area in object storage. Delete of a
// missing object must succeed.
type BlobStore interface {
	Put(ctx context.Context, localPath string, objectName string) error
	Get(ctx context.Context, objectName string, destPath string) error
	Delete(ctx context.Context, objectName string) error
}
