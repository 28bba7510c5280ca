// Package httpfetch retrieves listing pages and photos over plain HTTP.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/repository"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxPageBytes = 8 << 20
	defaultMaxImageSize = 10 << 20
)

// PageFetcher fetches listing HTML while presenting itself as a desktop browser.
type PageFetcher struct {
	client       *http.Client
	agents       *UserAgentPool
	maxPageBytes int64
}

func NewPageFetcher(timeout time.Duration, agents *UserAgentPool) *PageFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if agents == nil {
		agents = NewUserAgentPool()
	}
	return &PageFetcher{
		client:       &http.Client{Timeout: timeout},
		agents:       agents,
		maxPageBytes: defaultMaxPageBytes,
	}
}

// Fetch retrieves the HTML content of the given URL. Oversized pages are truncated.
func (f *PageFetcher) Fetch(ctx context.Context, url string) (*entity.RawPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &repository.FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.agents.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &repository.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &repository.FetchError{URL: url, StatusCode: resp.StatusCode, Err: repository.ErrUnexpectedStatus}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxPageBytes))
	if err != nil {
		return nil, &repository.FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	return &entity.RawPage{
		URL:        url,
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now(),
	}, nil
}

// ImageFetcher downloads listing photos with a plain GET.
type ImageFetcher struct {
	client   *http.Client
	agents   *UserAgentPool
	maxBytes int64
}

func NewImageFetcher(timeout time.Duration, maxBytes int64, agents *UserAgentPool) *ImageFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageSize
	}
	if agents == nil {
		agents = NewUserAgentPool()
	}
	return &ImageFetcher{
		client:   &http.Client{Timeout: timeout},
		agents:   agents,
		maxBytes: maxBytes,
	}
}

// FetchImage returns the image body. Bodies over the size limit fail with ErrImageTooLarge.
func (f *ImageFetcher) FetchImage(ctx context.Context, url string) (*entity.ImageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &repository.FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.agents.Next())

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &repository.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &repository.FetchError{URL: url, StatusCode: resp.StatusCode, Err: repository.ErrUnexpectedStatus}
	}
	if resp.ContentLength > f.maxBytes {
		return nil, &repository.FetchError{URL: url, StatusCode: resp.StatusCode, Err: repository.ErrImageTooLarge}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &repository.FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &repository.FetchError{URL: url, StatusCode: resp.StatusCode, Err: repository.ErrImageTooLarge}
	}

	return &entity.ImageData{
		URL:         url,
		Bytes:       body,
		ContentType: strings.TrimSpace(resp.Header.Get("Content-Type")),
	}, nil
}
