package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"

	"tripTagAPI/internal/apperr"
)

// BucketStorage implements ObjectStorage over the app's default Firebase
// Storage bucket. Uploaded objects are addressed by their public GCS URL;
// the bucket's access rules decide who can actually fetch them.
type BucketStorage struct {
	bucket *storage.BucketHandle
	name   string
}

func NewBucketStorage(bucket *storage.BucketHandle, name string) *BucketStorage {
	return &BucketStorage{bucket: bucket, name: name}
}

func (s *BucketStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", &apperr.StoreError{Op: "upload", Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &apperr.StoreError{Op: "upload", Err: err}
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.name, path), nil
}

func (s *BucketStorage) Delete(ctx context.Context, path string) error {
	if err := s.bucket.Object(path).Delete(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return apperr.ErrNotFound
		}
		return &apperr.StoreError{Op: "delete-object", Err: err}
	}
	return nil
}
