package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStore writes objects to a Cloud Storage bucket.
type GCSStore struct {
	bucket     string
	publicBase string
	open       func(ctx context.Context, key, contentType string) io.WriteCloser
}

// NewGCSStore returns a store writing to bucket through client.
func NewGCSStore(client *gcs.Client, bucket, publicBase string) *GCSStore {
	return &GCSStore{
		bucket:     bucket,
		publicBase: publicBase,
		open: func(ctx context.Context, key, contentType string) io.WriteCloser {
			w := client.Bucket(bucket).Object(key).NewWriter(ctx)
			w.ContentType = contentType
			return w
		},
	}
}

// Save uploads data. The object only becomes visible once Close succeeds.
func (s *GCSStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key, err := ValidateKey(key)
	if err != nil {
		return "", err
	}
	w := s.open(ctx, key, contentType)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: gcs close %s: %w", key, err)
	}
	if s.publicBase != "" {
		return publicURL(s.publicBase, key), nil
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key), nil
}
