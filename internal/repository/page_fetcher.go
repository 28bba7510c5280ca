package repository

import (
	"context"

	"github.com/user/listing-ingestor/internal/entity"
)

// PageFetcher defines the contract for retrieving a listing page.
type PageFetcher interface {
	// Fetch returns the page HTML. Any transport failure or non-2xx status is a *FetchError.
	Fetch(ctx context.Context, url string) (*entity.RawPage, error)
}

// ImageFetcher downloads a single listing photo.
type ImageFetcher interface {
	// FetchImage returns the image bytes and the upstream Content-Type, if any.
	FetchImage(ctx context.Context, url string) (*entity.ImageData, error)
}
