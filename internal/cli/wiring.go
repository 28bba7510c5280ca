package cli

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/listing-ingestor/internal/adapter/chromedp_fetcher"
	"github.com/user/listing-ingestor/internal/adapter/httpfetch"
	"github.com/user/listing-ingestor/internal/adapter/noop"
	"github.com/user/listing-ingestor/internal/adapter/objectstore"
	"github.com/user/listing-ingestor/internal/adapter/ollama"
	"github.com/user/listing-ingestor/internal/adapter/postgres"
	"github.com/user/listing-ingestor/internal/adapter/redis"
	"github.com/user/listing-ingestor/internal/delivery/http/handler"
	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/pipeline"
	"github.com/user/listing-ingestor/internal/repository"
	"github.com/user/listing-ingestor/internal/usecase"
	"github.com/user/listing-ingestor/pkg/config"
)

const connectTimeout = 5 * time.Second

// services is the wired application graph shared by serve and extract.
type services struct {
	ingestor usecase.Ingestor
	pingers  map[string]handler.Pinger
	closers  []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func buildServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*services, error) {
	s := &services{pingers: make(map[string]handler.Pinger)}

	storage, err := objectstore.NewMinioStorage(objectstore.Options{
		Endpoint:      cfg.StorageEndpoint,
		AccessKey:     cfg.StorageAccessKey,
		SecretKey:     cfg.StorageSecretKey,
		Bucket:        cfg.StorageBucket,
		UseSSL:        cfg.StorageUseSSL,
		PublicBaseURL: cfg.StoragePublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	s.pingers["storage"] = storage

	generator, err := ollama.NewClient(cfg.ModelEndpoint, cfg.ModelName, cfg.ModelAPIKey, cfg.ModelTimeout())
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}

	agents := httpfetch.NewUserAgentPool()
	var pageFetcher repository.PageFetcher
	switch cfg.FetchMode {
	case "browser":
		if err := chromedp_fetcher.BrowserAvailable(); err != nil {
			return nil, fmt.Errorf("browser fetch mode: %w", err)
		}
		browser := chromedp_fetcher.NewBrowserFetcher(cfg.FetchTimeout(), agents.Next(), logger)
		s.closers = append(s.closers, browser.Close)
		pageFetcher = browser
	default:
		pageFetcher = httpfetch.NewPageFetcher(cfg.FetchTimeout(), agents)
	}
	imageFetcher := httpfetch.NewImageFetcher(cfg.ImageTimeout(), cfg.MaxImageBytes, agents)

	runner := pipeline.New(pageFetcher, generator, imageFetcher, storage, pipeline.Options{
		MaxTextChars:     cfg.MaxTextChars,
		MaxPromptImages:  cfg.MaxPromptImages,
		MaxImages:        cfg.MaxImages,
		ImageConcurrency: cfg.ImageConcurrency,
		AmenityPolicy:    entity.AmenityPolicy(cfg.AmenityPolicy),
		StoragePrefix:    cfg.StoragePrefix,
	}, logger)

	var cache repository.ResultCache = noop.ResultCache{}
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s.closers = append(s.closers, func() { _ = client.Close() })
		redisCache := redis.NewResultCache(client)
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, cache lookups will miss until it recovers", zap.Error(err))
		}
		cancel()
		cache = redisCache
		s.pingers["redis"] = redisCache
	} else {
		logger.Info("REDIS_ADDR not set, result cache disabled")
	}

	var ingestionLog repository.IngestionLogRepository = noop.IngestionLog{}
	if cfg.PostgresURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		pool, err := postgres.NewPool(connectCtx, cfg.PostgresURL)
		cancel()
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := postgres.RunMigrations(pool, logger); err != nil {
			s.Close()
			return nil, err
		}
		repo := postgres.NewIngestionLogRepo(pool)
		ingestionLog = repo
		s.pingers["postgres"] = repo
	} else {
		logger.Info("POSTGRES_URL not set, ingestion log disabled")
	}

	s.ingestor = usecase.NewIngestionUseCase(runner, cache, ingestionLog, cfg.CacheTTL(), logger)
	return s, nil
}
