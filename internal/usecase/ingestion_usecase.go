package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/pipeline"
	"github.com/user/listing-ingestor/internal/repository"
	"github.com/user/listing-ingestor/pkg/metrics"
)

const recordTimeout = 5 * time.Second

// Error kinds used in metrics labels and the ingestion log.
const (
	ErrorKindFetch      = "fetch"
	ErrorKindExtraction = "extraction_service"
	ErrorKindMalformed  = "malformed_extraction"
	ErrorKindStorage    = "storage"
	ErrorKindCanceled   = "canceled"
	ErrorKindUnknown    = "unknown"
)

// ClassifyError maps a pipeline failure to its error kind.
func ClassifyError(err error) string {
	var (
		fetchErr     *repository.FetchError
		svcErr       *repository.ExtractionServiceError
		malformedErr *repository.MalformedExtractionError
		uploadErr    *repository.UploadError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindCanceled
	case errors.As(err, &fetchErr):
		return ErrorKindFetch
	case errors.As(err, &svcErr):
		return ErrorKindExtraction
	case errors.As(err, &malformedErr):
		return ErrorKindMalformed
	case errors.As(err, &uploadErr), errors.Is(err, repository.ErrBucketNotFound):
		return ErrorKindStorage
	}
	return ErrorKindUnknown
}

// Runner executes the ingestion pipeline for one URL.
type Runner interface {
	Run(ctx context.Context, sourceURL string) (*pipeline.Report, error)
}

// Ingestor defines the interface for listing ingestion.
type Ingestor interface {
	Ingest(ctx context.Context, req entity.ExtractionRequest) (*entity.IngestionResult, error)
	History(ctx context.Context, sourceURL string, limit int) ([]*entity.IngestionRecord, error)
}

type ingestionUseCase struct {
	runner   Runner
	cache    repository.ResultCache
	log      repository.IngestionLogRepository
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewIngestionUseCase creates a new instance of the ingestion use case.
func NewIngestionUseCase(
	runner Runner,
	cache repository.ResultCache,
	log repository.IngestionLogRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) Ingestor {
	return &ingestionUseCase{
		runner:   runner,
		cache:    cache,
		log:      log,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Ingest serves a recent cached result unless Force is set, otherwise runs the
// pipeline. Every pipeline run is recorded in the ingestion log.
func (uc *ingestionUseCase) Ingest(ctx context.Context, req entity.ExtractionRequest) (*entity.IngestionResult, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	logger := uc.logger.With(zap.String("url", req.SourceURL), zap.String("request_id", req.RequestID))

	if cached := uc.lookupCache(ctx, req, logger); cached != nil {
		metrics.IngestionsTotal.WithLabelValues("cached", "").Inc()
		logger.Info("serving cached ingestion")
		return cached, nil
	}

	startTime := time.Now()
	report, err := uc.runner.Run(ctx, req.SourceURL)
	duration := time.Since(startTime)

	if report != nil {
		for stage, d := range report.Stages {
			metrics.StageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
		}
	}

	if err != nil {
		kind := ClassifyError(err)
		metrics.IngestionsTotal.WithLabelValues(string(entity.IngestionFailed), kind).Inc()
		logger.Error("ingestion failed", zap.String("error_kind", kind), zap.Duration("duration", duration), zap.Error(err))
		uc.record(ctx, newRecord(req, report, duration, kind, err), logger)
		return nil, err
	}

	for _, img := range report.Images {
		metrics.ImagesProcessed.WithLabelValues(string(img.Status)).Inc()
	}
	metrics.AmenitiesFlagged.Add(float64(len(report.Result.FlaggedAmenities)))
	metrics.IngestionsTotal.WithLabelValues(string(entity.IngestionSucceeded), "").Inc()
	logger.Info("ingestion succeeded",
		zap.Duration("duration", duration),
		zap.Int("images_requested", len(report.Images)),
		zap.Int("images_persisted", len(report.Result.ImageURLs)),
	)

	if err := uc.cache.Set(ctx, req.SourceURL, report.Result, uc.cacheTTL); err != nil {
		logger.Warn("failed to cache ingestion result", zap.Error(err))
	}
	uc.record(ctx, newRecord(req, report, duration, "", nil), logger)

	return report.Result, nil
}

// lookupCache returns nil on a miss, a bypass, or a cache failure.
func (uc *ingestionUseCase) lookupCache(ctx context.Context, req entity.ExtractionRequest, logger *zap.Logger) *entity.IngestionResult {
	if req.Force {
		metrics.CacheLookups.WithLabelValues("bypass").Inc()
		if err := uc.cache.Delete(ctx, req.SourceURL); err != nil {
			logger.Warn("failed to drop cached result", zap.Error(err))
		}
		return nil
	}

	result, err := uc.cache.Get(ctx, req.SourceURL)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		result.Cached = true
		return result
	case errors.Is(err, repository.ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.Warn("cache lookup failed", zap.Error(err))
	}
	return nil
}

// record writes the attempt even when the request context is already done.
func (uc *ingestionUseCase) record(ctx context.Context, rec *entity.IngestionRecord, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := uc.log.Save(ctx, rec); err != nil {
		logger.Warn("failed to record ingestion", zap.Error(err))
	}
}

func newRecord(req entity.ExtractionRequest, report *pipeline.Report, duration time.Duration, kind string, err error) *entity.IngestionRecord {
	rec := &entity.IngestionRecord{
		RequestID:  req.RequestID,
		SourceURL:  req.SourceURL,
		Status:     entity.IngestionSucceeded,
		DurationMS: duration.Milliseconds(),
	}
	if err != nil {
		rec.Status = entity.IngestionFailed
		rec.ErrorKind = kind
		rec.ErrorMessage = err.Error()
	}
	if report == nil {
		return rec
	}
	if report.Validated != nil {
		rec.FieldOutcomes = report.Validated.Outcomes
		rec.ImagesRequested = len(report.Validated.Listing.ImageURLs)
	}
	if report.Images != nil {
		rec.ImagesRequested = len(report.Images)
	}
	rec.ImagesPersisted = len(pipeline.OKImages(report.Images))
	return rec
}

// History lists recorded attempts for sourceURL, newest first.
func (uc *ingestionUseCase) History(ctx context.Context, sourceURL string, limit int) ([]*entity.IngestionRecord, error) {
	return uc.log.FindByURL(ctx, sourceURL, limit)
}
