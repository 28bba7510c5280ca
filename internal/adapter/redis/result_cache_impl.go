package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/repository"
	"github.com/user/listing-ingestor/pkg/utils"
)

const resultKeyPrefix = "ingestion:"

// ResultCacheImpl provides a concrete implementation for the ResultCache interface using Redis.
type ResultCacheImpl struct {
	client *redis.Client
}

// NewResultCache creates a new instance of ResultCacheImpl.
func NewResultCache(client *redis.Client) *ResultCacheImpl {
	return &ResultCacheImpl{client: client}
}

// generateKey hashes the normalized URL so equivalent spellings share an entry.
func (r *ResultCacheImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", resultKeyPrefix, utils.HashURL(utils.NormalizeURL(url)))
}

func (r *ResultCacheImpl) Get(ctx context.Context, url string) (*entity.IngestionResult, error) {
	raw, err := r.client.Get(ctx, r.generateKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var result entity.IngestionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding cached result: %w", err)
	}
	return &result, nil
}

// Set stores the result with an expiry; SET with EX is atomic.
func (r *ResultCacheImpl) Set(ctx context.Context, url string, result *entity.IngestionResult, expiry time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return r.client.Set(ctx, r.generateKey(url), raw, expiry).Err()
}

// Delete removes the cached result, used for forced refreshes.
func (r *ResultCacheImpl) Delete(ctx context.Context, url string) error {
	return r.client.Del(ctx, r.generateKey(url)).Err()
}

func (r *ResultCacheImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
