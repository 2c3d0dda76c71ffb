package storage

import (
	"context"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore deletes uploaded attachment blobs. Uploads happen
// client-side against the storage provider; only the resulting key/url
// metadata ever reaches this service.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

func OpenObjectStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*ObjectStore, error) {
	c, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &ObjectStore{client: c, bucket: bucket}, nil
}

// DeleteObjects removes the given keys best-effort: a failed key is
// logged and skipped, never propagated. An orphaned object is an accepted
// residual; blocking a user-facing edit on a storage outage is not.
func (s *ObjectStore) DeleteObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
		if err != nil {
			log.Printf("storage: delete %s/%s failed: %v", s.bucket, key, err)
		}
	}
}
