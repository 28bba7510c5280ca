package repository

import "context"

// ObjectStorage is the durable store for persisted listing photos.
type ObjectStorage interface {
	// Upload writes data under key. A missing bucket is reported as ErrBucketNotFound.
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// PublicURL resolves a key to the URL clients can load it from.
	PublicURL(key string) string
	// Ping verifies the bucket exists and is reachable.
	Ping(ctx context.Context) error
}
