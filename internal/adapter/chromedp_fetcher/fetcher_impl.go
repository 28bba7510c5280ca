package chromedp_fetcher

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/repository"
)

// BrowserFetcher renders listing pages in headless Chrome, for sites that build
// their content client-side.
type BrowserFetcher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	logger      *zap.Logger
}

// NewBrowserFetcher creates one shared allocator; every Fetch opens its own tab.
func NewBrowserFetcher(pageLoadTimeout time.Duration, userAgent string, logger *zap.Logger) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserFetcher{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		timeout:     pageLoadTimeout,
		logger:      logger,
	}
}

// Fetch navigates to url and returns the rendered document.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*entity.RawPage, error) {
	taskCtx, cancel := chromedp.NewContext(f.allocCtx)
	defer cancel()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, f.timeout)
	defer cancelTimeout()

	// The tab hangs off the allocator, so tie it to the caller explicitly.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var (
		mu     sync.Mutex
		status int64
	)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			mu.Lock()
			if status == 0 {
				status = e.Response.Status
			}
			mu.Unlock()
		}
	})

	var htmlContent string
	startTime := time.Now()
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)

	mu.Lock()
	statusCode := int(status)
	mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		f.logger.Warn("browser fetch failed", zap.String("url", url), zap.Int("status", statusCode), zap.Error(err))
		return nil, &repository.FetchError{URL: url, StatusCode: statusCode, Err: err}
	}
	if err := checkStatus(url, statusCode); err != nil {
		return nil, err
	}

	f.logger.Debug("page rendered",
		zap.String("url", url),
		zap.Int("status", statusCode),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return &entity.RawPage{
		URL:        url,
		HTML:       htmlContent,
		StatusCode: statusCode,
		FetchedAt:  time.Now(),
		Rendered:   true,
	}, nil
}

// Close shuts down the browser process.
func (f *BrowserFetcher) Close() {
	f.cancelAlloc()
}

// checkStatus treats an unseen status (0) as success since the document rendered.
func checkStatus(url string, status int) error {
	if status != 0 && (status < http.StatusOK || status >= http.StatusMultipleChoices) {
		return &repository.FetchError{URL: url, StatusCode: status, Err: repository.ErrUnexpectedStatus}
	}
	return nil
}

// BrowserAvailable reports whether a Chrome binary can be found for the browser fetch mode.
func BrowserAvailable() error {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell", "chrome"} {
		if _, err := exec.LookPath(name); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no chrome or chromium binary on PATH")
}
