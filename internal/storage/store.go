// Package storage persists generated quote PDFs and uploaded logos on the
// local disk, Amazon S3 or Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ErrInvalidKey is returned for keys that are empty or try to escape the
// store root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Store saves a blob under key and returns where it can be read back: a
// local path or a URL.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Backend names accepted by New.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendGCS   = "gcs"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string
	Dir           string
	S3Bucket      string
	S3Region      string
	GCSBucket     string
	PublicBaseURL string
}

// New builds the Store described by cfg.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendLocal:
		return NewLocalStore(cfg.Dir, cfg.PublicBaseURL), nil
	case BackendS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("storage: S3_BUCKET is required for the s3 backend")
		}
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.S3Region)})
		if err != nil {
			return nil, fmt.Errorf("storage: aws session: %w", err)
		}
		return NewS3Store(s3manager.NewUploader(sess), cfg.S3Bucket, cfg.PublicBaseURL), nil
	case BackendGCS:
		if cfg.GCSBucket == "" {
			return nil, errors.New("storage: GCS_BUCKET is required for the gcs backend")
		}
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage: gcs client: %w", err)
		}
		return NewGCSStore(client, cfg.GCSBucket, cfg.PublicBaseURL), nil
	}
	return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
}

// ValidateKey checks a slash separated object key. Each segment must be
// non-empty and free of traversal sequences and backslashes.
func ValidateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: key is required", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: key must be relative", ErrInvalidKey)
	}
	for _, seg := range strings.Split(key, "/") {
		switch {
		case strings.TrimSpace(seg) == "":
			return "", fmt.Errorf("%w: empty segment", ErrInvalidKey)
		case strings.Contains(seg, "\\"):
			return "", fmt.Errorf("%w: invalid path characters", ErrInvalidKey)
		case strings.Contains(seg, ".."):
			return "", fmt.Errorf("%w: invalid traversal sequence", ErrInvalidKey)
		}
	}
	return key, nil
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
