// Package noop provides stand-ins for the optional backends so the service runs
// without Redis or PostgreSQL.
package noop

import (
	"context"
	"time"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/repository"
)

// ResultCache never stores anything.
type ResultCache struct{}

func (ResultCache) Get(context.Context, string) (*entity.IngestionResult, error) {
	return nil, repository.ErrCacheMiss
}

func (ResultCache) Set(context.Context, string, *entity.IngestionResult, time.Duration) error {
	return nil
}

func (ResultCache) Delete(context.Context, string) error { return nil }

// IngestionLog discards records; history lookups report ErrNotConfigured.
type IngestionLog struct{}

func (IngestionLog) Save(context.Context, *entity.IngestionRecord) error { return nil }

func (IngestionLog) FindByURL(context.Context, string, int) ([]*entity.IngestionRecord, error) {
	return nil, repository.ErrNotConfigured
}
