// internal/common/aws/s3.go
package aws

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by the blob store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3BlobStore stores normalized photos in a single bucket.
type S3BlobStore struct {
	client       S3API
	bucket       string
	publicRegion string
	contentType  string
}

func NewS3BlobStore(cfg aws.Config, bucket, publicRegion, contentType string) *S3BlobStore {
	return NewS3BlobStoreWithClient(s3.NewFromConfig(cfg), bucket, publicRegion, contentType)
}

func NewS3BlobStoreWithClient(client S3API, bucket, publicRegion, contentType string) *S3BlobStore {
	return &S3BlobStore{
		client:       client,
		bucket:       bucket,
		publicRegion: publicRegion,
		contentType:  contentType,
	}
}

// Bucket returns the bucket objects are written to.
func (s *S3BlobStore) Bucket() string {
	return s.bucket
}

// Put uploads data under key.
func (s *S3BlobStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(s.contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// PublicURL is the virtual-hosted URL of key.
func (s *S3BlobStore) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.publicRegion, key)
}
