// Package objectstore persists listing photos in an S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/user/listing-ingestor/internal/repository"
)

// Options configures the bucket connection.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Region skips bucket location discovery when set.
	Region string
	// PublicBaseURL is the CDN or website origin objects are served from.
	// Empty means path-style URLs on Endpoint.
	PublicBaseURL string
}

// MinioStorage is an ObjectStorage on MinIO or any S3-compatible service.
type MinioStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinioStorage(opts Options) (*MinioStorage, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, repository.ErrNotConfigured
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	baseURL := strings.TrimRight(opts.PublicBaseURL, "/")
	if baseURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, opts.Endpoint, opts.Bucket)
	}

	return &MinioStorage{client: client, bucket: opts.Bucket, baseURL: baseURL}, nil
}

// Upload stores data under key. A missing bucket maps to repository.ErrBucketNotFound.
func (s *MinioStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchBucket" {
			return fmt.Errorf("%w: %s", repository.ErrBucketNotFound, s.bucket)
		}
		return err
	}
	return nil
}

func (s *MinioStorage) PublicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// Ping checks that the bucket exists.
func (s *MinioStorage) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", repository.ErrBucketNotFound, s.bucket)
	}
	return nil
}
