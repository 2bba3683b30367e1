package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// s3Uploader is the part of *s3manager.Uploader the store needs.
type s3Uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// S3Store uploads objects to an S3 bucket.
type S3Store struct {
	uploader   s3Uploader
	bucket     string
	publicBase string
}

// NewS3Store returns a store writing to bucket.
func NewS3Store(uploader *s3manager.Uploader, bucket, publicBase string) *S3Store {
	return &S3Store{uploader: uploader, bucket: bucket, publicBase: publicBase}
}

func (s *S3Store) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key, err := ValidateKey(key)
	if err != nil {
		return "", err
	}
	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: s3 upload %s: %w", key, err)
	}
	if s.publicBase != "" {
		return publicURL(s.publicBase, key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}
