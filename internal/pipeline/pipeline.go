package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/repository"
)

// Stage names a pipeline step for timing.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageSanitize Stage = "sanitize"
	StageExtract  Stage = "extract"
	StageValidate Stage = "validate"
	StageImages   Stage = "images"
)

// Options holds the tunables of a Pipeline. Zero values select the defaults.
type Options struct {
	MaxTextChars     int
	MaxPromptImages  int
	MaxImages        int
	ImageConcurrency int
	AmenityPolicy    entity.AmenityPolicy
	StoragePrefix    string
}

// Report is everything a Run produced, including partial progress on failure.
type Report struct {
	Result    *entity.IngestionResult
	Validated *entity.ValidatedListing
	Images    []entity.PersistedImage
	Stages    map[Stage]time.Duration
}

// Pipeline runs one listing URL through every ingestion stage.
type Pipeline struct {
	fetcher   repository.PageFetcher
	sanitizer *Sanitizer
	prompts   *PromptBuilder
	extractor *ExtractionClient
	validator *Validator
	images    *ImagePipeline
	logger    *zap.Logger
}

func New(
	fetcher repository.PageFetcher,
	generator repository.TextGenerator,
	imageFetcher repository.ImageFetcher,
	storage repository.ObjectStorage,
	opts Options,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = DefaultMaxImages
	}
	return &Pipeline{
		fetcher:   fetcher,
		sanitizer: NewSanitizer(opts.MaxTextChars),
		prompts:   NewPromptBuilder(opts.MaxPromptImages, opts.MaxImages),
		extractor: NewExtractionClient(generator),
		validator: NewValidator(opts.AmenityPolicy),
		images: NewImagePipeline(imageFetcher, storage, ImageOptions{
			Concurrency: opts.ImageConcurrency,
			MaxImages:   opts.MaxImages,
			Prefix:      opts.StoragePrefix,
		}, logger),
		logger: logger,
	}
}

// Run executes the pipeline. Stages run strictly in order and the first
// request-fatal error stops the run; per-image failures only shrink the image list.
func (p *Pipeline) Run(ctx context.Context, sourceURL string) (*Report, error) {
	report := &Report{Stages: make(map[Stage]time.Duration, 5)}
	timed := func(stage Stage, start time.Time) {
		report.Stages[stage] = time.Since(start)
	}

	start := time.Now()
	page, err := p.fetcher.Fetch(ctx, sourceURL)
	timed(StageFetch, start)
	if err != nil {
		return report, asFetchError(sourceURL, err)
	}
	p.logger.Debug("page fetched",
		zap.String("url", sourceURL),
		zap.Int("status", page.StatusCode),
		zap.Int("bytes", len(page.HTML)),
		zap.Bool("rendered", page.Rendered),
	)

	start = time.Now()
	content := p.sanitizer.Sanitize(sourceURL, page.HTML)
	prompt := p.prompts.Build(sourceURL, content)
	timed(StageSanitize, start)
	p.logger.Debug("page sanitized",
		zap.Int("text_chars", len(content.Text)),
		zap.Int("candidate_images", len(content.CandidateImageURLs)),
	)

	start = time.Now()
	raw, err := p.extractor.Extract(ctx, prompt)
	timed(StageExtract, start)
	if err != nil {
		return report, err
	}

	start = time.Now()
	validated, err := p.validator.Validate(raw)
	timed(StageValidate, start)
	if err != nil {
		return report, err
	}
	report.Validated = validated
	if len(validated.FlaggedAmenities) > 0 {
		p.logger.Info("unknown amenities in extraction",
			zap.String("url", sourceURL),
			zap.Strings("amenities", validated.FlaggedAmenities),
		)
	}
	if len(content.CandidateImageURLs) > 0 && len(validated.Listing.ImageURLs) == 0 {
		p.logger.Warn("model selected no images despite candidates", zap.String("url", sourceURL))
	}

	start = time.Now()
	images, err := p.images.Persist(ctx, validated.Listing.ImageURLs)
	timed(StageImages, start)
	if err != nil {
		return report, err
	}
	report.Images = images

	report.Result = Assemble(sourceURL, validated, images)
	return report, nil
}

// asFetchError keeps cancellation distinguishable and wraps everything else as a FetchError.
func asFetchError(url string, err error) error {
	var fetchErr *repository.FetchError
	if errors.As(err, &fetchErr) || errors.Is(err, context.Canceled) {
		return err
	}
	return &repository.FetchError{URL: url, Err: err}
}
