package repository

import (
	"context"
	"time"

	"github.com/user/listing-ingestor/internal/entity"
)

// ResultCache stores recent ingestion results keyed by source URL.
type ResultCache interface {
	// Get returns ErrCacheMiss when nothing is stored for url.
	Get(ctx context.Context, url string) (*entity.IngestionResult, error)
	// Set stores a result for url with the given expiry.
	Set(ctx context.Context, url string, result *entity.IngestionResult, expiry time.Duration) error
	// Delete removes the cached result for url, used for forced refreshes.
	Delete(ctx context.Context, url string) error
}
