package repository

import (
	"context"

	"github.com/user/listing-ingestor/internal/entity"
)

// IngestionLogRepository records every ingestion attempt for later review.
type IngestionLogRepository interface {
	// Save appends an attempt and fills in its ID and CreatedAt.
	Save(ctx context.Context, record *entity.IngestionRecord) error
	// FindByURL returns the most recent attempts for a source URL, newest first.
	FindByURL(ctx context.Context, url string, limit int) ([]*entity.IngestionRecord, error)
}
