package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/repository"
)

const (
	DefaultImageConcurrency = 5
	DefaultStoragePrefix    = "listings"
	defaultImageExt         = "jpg"
)

// ImageOptions bounds the image pipeline.
type ImageOptions struct {
	// Concurrency is the maximum number of in-flight fetch+upload tasks.
	Concurrency int
	// MaxImages caps how many proposed URLs are processed at all.
	MaxImages int
	// Prefix is prepended to every storage key.
	Prefix string
}

// ImagePipeline copies listing photos into object storage with a bounded fan-out.
type ImagePipeline struct {
	fetcher repository.ImageFetcher
	storage repository.ObjectStorage
	opts    ImageOptions
	logger  *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewImagePipeline(fetcher repository.ImageFetcher, storage repository.ObjectStorage, opts ImageOptions, logger *zap.Logger) *ImagePipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultImageConcurrency
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = DefaultMaxImages
	}
	opts.Prefix = strings.Trim(opts.Prefix, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImagePipeline{
		fetcher: fetcher,
		storage: storage,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Persist fetches and uploads every URL, returning one PersistedImage per
// processed URL in proposed order. Per-image failures are recorded in the result;
// only a missing bucket or a canceled context is returned as an error.
func (p *ImagePipeline) Persist(ctx context.Context, imageURLs []string) ([]entity.PersistedImage, error) {
	urls := selectImages(imageURLs, p.opts.MaxImages)
	results := make([]entity.PersistedImage, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			res, err := p.persistOne(gctx, u)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// persistOne returns an error only when the whole run must stop.
func (p *ImagePipeline) persistOne(ctx context.Context, sourceURL string) (entity.PersistedImage, error) {
	res := entity.PersistedImage{SourceURL: sourceURL}
	if err := ctx.Err(); err != nil {
		res.Status = entity.ImageFetchFailed
		res.Reason = err.Error()
		return res, nil
	}

	img, err := p.fetcher.FetchImage(ctx, sourceURL)
	if err != nil {
		p.logger.Warn("image fetch failed", zap.String("url", sourceURL), zap.Error(err))
		res.Status = entity.ImageFetchFailed
		res.Reason = err.Error()
		return res, nil
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Bytes)
	}

	key := p.storageKey(sourceURL)
	if err := p.storage.Upload(ctx, key, img.Bytes, contentType); err != nil {
		if errors.Is(err, repository.ErrBucketNotFound) {
			return res, &repository.UploadError{Key: key, Err: err}
		}
		p.logger.Warn("image upload failed", zap.String("url", sourceURL), zap.String("key", key), zap.Error(err))
		res.Status = entity.ImageUploadFailed
		res.Reason = err.Error()
		return res, nil
	}

	res.StorageKey = key
	res.PublicURL = p.storage.PublicURL(key)
	res.Status = entity.ImageOK
	return res, nil
}

func (p *ImagePipeline) storageKey(sourceURL string) string {
	name := fmt.Sprintf("%d-%s.%s", p.now().UnixMilli(), p.newID(), ImageExtension(sourceURL))
	if p.opts.Prefix == "" {
		return name
	}
	return p.opts.Prefix + "/" + name
}

// selectImages drops blanks and duplicates, then caps the list.
func selectImages(imageURLs []string, limit int) []string {
	seen := make(map[string]struct{}, len(imageURLs))
	out := make([]string, 0, min(len(imageURLs), limit))
	for _, u := range imageURLs {
		if len(out) == limit {
			break
		}
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// ImageExtension derives a lowercase file extension from the URL path, ignoring
// the query string. Anything that does not look like an extension yields "jpg".
func ImageExtension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	if ext == "" || len(ext) > 5 {
		return defaultImageExt
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultImageExt
		}
	}
	return ext
}

// OKImages keeps the successfully persisted images, preserving order.
func OKImages(images []entity.PersistedImage) []entity.PersistedImage {
	out := make([]entity.PersistedImage, 0, len(images))
	for _, img := range images {
		if img.Status == entity.ImageOK {
			out = append(out, img)
		}
	}
	return out
}
